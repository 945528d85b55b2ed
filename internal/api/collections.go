package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxPageLimit is the largest limit list endpoints accept.
const MaxPageLimit = 100

// getList fetches a collection. A 404 means an empty collection.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) (List[T], error) {
	var out List[T]
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	if IsNotFound(err) {
		return List[T]{}, nil
	}
	if err != nil {
		return List[T]{}, err
	}
	return out, nil
}

// fetchAll pages through a skip/limit collection until total is reached.
func fetchAll[T any](ctx context.Context, page func(ctx context.Context, skip, limit int) (List[T], error)) (List[T], error) {
	var all []T
	total := 0
	for skip := 0; ; {
		batch, err := page(ctx, skip, MaxPageLimit)
		if err != nil {
			return List[T]{}, err
		}
		all = append(all, batch.Items...)
		total = batch.Total
		skip += len(batch.Items)
		if len(batch.Items) == 0 || skip >= total {
			break
		}
	}
	if total < len(all) {
		total = len(all)
	}
	return List[T]{Items: all, Total: total}, nil
}

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(min(limit, MaxPageLimit)))
	}
	return q
}

func idPath(prefix string, id uuid.UUID, suffix string) string {
	p := prefix + "/" + id.String()
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// Users

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (List[User], error) {
	values := pageQuery(q.Skip, q.Limit)
	if q.IsActive != nil {
		values.Set("is_active", strconv.FormatBool(*q.IsActive))
	}
	if q.RoleID != nil {
		values.Set("role_id", q.RoleID.String())
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	return getList[User](ctx, c, "/users", values)
}

// AllUsers returns every user matching q, ignoring q's paging.
func (c *Client) AllUsers(ctx context.Context, q UserQuery) (List[User], error) {
	return fetchAll(ctx, func(ctx context.Context, skip, limit int) (List[User], error) {
		q.Skip, q.Limit = skip, limit
		return c.ListUsers(ctx, q)
	})
}

func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/users", id, "")}, &u)
	return u, err
}

func (c *Client) CreateUser(ctx context.Context, in UserCreate) (User, error) {
	if in.RoleID == uuid.Nil {
		return User{}, fmt.Errorf("role id is required")
	}
	var u User
	err := c.do(ctx, request{method: http.MethodPost, path: "/users", body: in}, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (User, error) {
	var u User
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/users", id, ""), body: in}, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/users", id, "")}, nil)
}

func (c *Client) ActivateUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := c.do(ctx, request{method: http.MethodPost, path: idPath("/users", id, "activate")}, &u)
	return u, err
}

func (c *Client) DeactivateUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := c.do(ctx, request{method: http.MethodPost, path: idPath("/users", id, "deactivate")}, &u)
	return u, err
}

// Assets

// ListAssets returns one page of assets.
func (c *Client) ListAssets(ctx context.Context, q AssetQuery) (List[Asset], error) {
	values := pageQuery(q.Skip, q.Limit)
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	if q.CategoryID != nil {
		values.Set("category_id", q.CategoryID.String())
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	return getList[Asset](ctx, c, "/assets/list_assets", values)
}

// AllAssets returns every asset matching q, ignoring q's paging.
func (c *Client) AllAssets(ctx context.Context, q AssetQuery) (List[Asset], error) {
	return fetchAll(ctx, func(ctx context.Context, skip, limit int) (List[Asset], error) {
		q.Skip, q.Limit = skip, limit
		return c.ListAssets(ctx, q)
	})
}

func (c *Client) GetAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	var a Asset
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/assets", id, "get_asset")}, &a)
	return a, err
}

func (c *Client) CreateAsset(ctx context.Context, in AssetInput) (Asset, error) {
	var a Asset
	err := c.do(ctx, request{method: http.MethodPost, path: "/assets/create_asset", body: in}, &a)
	return a, err
}

func (c *Client) UpdateAsset(ctx context.Context, id uuid.UUID, in AssetInput) (Asset, error) {
	var a Asset
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/assets", id, "update_asset"), body: in}, &a)
	return a, err
}

func (c *Client) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/assets", id, "delete_asset")}, nil)
}

// Loans

// ListLoans returns loans visible to the current user, optionally filtered
// by status.
func (c *Client) ListLoans(ctx context.Context, status LoanStatus) (List[Loan], error) {
	values := url.Values{}
	if status != "" {
		values.Set("status_filter", string(status))
	}
	return getList[Loan](ctx, c, "/loans", values)
}

func (c *Client) GetLoan(ctx context.Context, id uuid.UUID) (Loan, error) {
	var l Loan
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/loans", id, "")}, &l)
	return l, err
}

// CreateLoan files a loan request for the current user.
func (c *Client) CreateLoan(ctx context.Context, in LoanCreate) (Loan, error) {
	if in.AssetID == uuid.Nil {
		return Loan{}, fmt.Errorf("asset id is required")
	}
	var l Loan
	err := c.do(ctx, request{method: http.MethodPost, path: "/loans", body: in}, &l)
	return l, err
}

// LoanAction is a transition of the server's loan state machine.
type LoanAction string

const (
	ApproveLoan LoanAction = "approve"
	RejectLoan  LoanAction = "reject"
	StartLoan   LoanAction = "start"
	ReturnLoan  LoanAction = "return"
)

// TransitionLoan applies action to a loan with optional notes.
func (c *Client) TransitionLoan(ctx context.Context, id uuid.UUID, action LoanAction, notes string) (Loan, error) {
	switch action {
	case ApproveLoan, RejectLoan, StartLoan, ReturnLoan:
	default:
		return Loan{}, fmt.Errorf("unknown loan action %q", action)
	}
	var body any
	if n := strings.TrimSpace(notes); n != "" {
		body = LoanTransition{Notes: &n}
	}
	var l Loan
	err := c.do(ctx, request{method: http.MethodPost, path: idPath("/loans", id, string(action)), body: body}, &l)
	return l, err
}

// CheckOverdue asks the server to sweep for overdue loans and returns the
// loans it flagged.
func (c *Client) CheckOverdue(ctx context.Context) ([]Loan, error) {
	var out List[Loan]
	if err := c.do(ctx, request{method: http.MethodPost, path: "/loans/check-overdue"}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
