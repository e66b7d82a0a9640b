// Package servicenow provides the ServiceNow adapter over the Table API.
// Incidents are plain tickets; change requests in the review category are
// review requests. Branches live as labeled lines in the description.
package servicenow

import (
	"context"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/danielolaszy/ticketbridge/internal/logging"
	"github.com/danielolaszy/ticketbridge/pkg/tracker"
)

// Record is a Table API row, read with reference links excluded and raw
// (non-display) values, so state is the numeric code and assigned_to a sys_id.
type Record struct {
	SysID            string `json:"sys_id"`
	Number           string `json:"number"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	State            string `json:"state"`
	Category         string `json:"category"`
	AssignedTo       string `json:"assigned_to"`
	WatchList        string `json:"watch_list"`
	SysCreatedBy     string `json:"sys_created_by"`
	SysUpdatedBy     string `json:"sys_updated_by"`
	SysCreatedOn     string `json:"sys_created_on"`
	SysUpdatedOn     string `json:"sys_updated_on"`
}

// Transport is the Table API surface the adapter calls. Every method is
// scoped to a table name. Not-found responses wrap tracker.ErrNotFound.
type Transport interface {
	Get(ctx context.Context, table, sysID string) (*Record, error)
	List(ctx context.Context, table, query string) ([]Record, error)
	Create(ctx context.Context, table string, payload map[string]string) (*Record, error)
	Patch(ctx context.Context, table, sysID string, payload map[string]string) (*Record, error)
}

type singleResult struct {
	Result Record `json:"result"`
}

type listResult struct {
	Result []Record `json:"result"`
}

// apiError is the Table API failure body.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
	Status string `json:"status"`
}

func (e *apiError) message() string {
	if e == nil || e.Error.Message == "" {
		return ""
	}
	if e.Error.Detail == "" {
		return e.Error.Message
	}
	return e.Error.Message + ": " + e.Error.Detail
}

// RESTTransport implements Transport with resty. Calls are optionally paced
// by a token bucket; nothing is retried.
type RESTTransport struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewRESTTransport builds a Table API client for cfg.BaseURL using basic or
// OAuth bearer auth.
func NewRESTTransport(cfg tracker.Config) (*RESTTransport, error) {
	var client *resty.Client
	switch cfg.Auth.Kind {
	case tracker.AuthOAuth:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.Token})
		client = resty.NewWithClient(oauth2.NewClient(context.Background(), ts))
	case tracker.AuthBasic:
		client = resty.New().SetBasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	default:
		return nil, tracker.ExpectAuth(tracker.ServiceNow, cfg.Auth, tracker.AuthBasic, tracker.AuthOAuth)
	}

	secret := cfg.Auth.Password
	if cfg.Auth.Kind == tracker.AuthOAuth {
		secret = cfg.Auth.Token
	}

	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	client.
		SetBaseURL(baseURL+"/api/now/table").
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	logging.Debug("servicenow configuration",
		"base_url", baseURL,
		"auth", cfg.Auth.Kind,
		"username", cfg.Auth.Username,
		"secret", logging.MaskSensitive(secret),
		"rate_limit", cfg.RateLimit)

	return newRESTTransport(client, cfg.RateLimit), nil
}

func newRESTTransport(client *resty.Client, perSecond float64) *RESTTransport {
	t := &RESTTransport{client: client}
	if perSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return t
}

// request paces the call and prepares the query parameters every call shares.
func (t *RESTTransport) request(ctx context.Context, table string) (*resty.Request, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return t.client.R().
		SetContext(ctx).
		SetPathParam("table", table).
		SetQueryParams(map[string]string{
			"sysparm_exclude_reference_link": "true",
			"sysparm_display_value":          "false",
		}).
		SetError(&apiError{}), nil
}

func (t *RESTTransport) check(op, table string, resp *resty.Response, err error) error {
	if err != nil {
		return tracker.TransportFailure(tracker.ServiceNow, op+" "+table, 0, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	if body, ok := resp.Error().(*apiError); ok && body.message() != "" {
		msg = body.message()
	}
	return tracker.TransportFailure(tracker.ServiceNow, op+" "+table, resp.StatusCode(), errors.New(msg))
}

// Get reads one row by sys_id.
func (t *RESTTransport) Get(ctx context.Context, table, sysID string) (*Record, error) {
	req, err := t.request(ctx, table)
	if err != nil {
		return nil, err
	}

	var out singleResult
	resp, err := req.SetPathParam("sys_id", sysID).SetResult(&out).Get("/{table}/{sys_id}")
	if err := t.check("get", table, resp, err); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// List reads every row matching an encoded query; an empty query lists the table.
func (t *RESTTransport) List(ctx context.Context, table, query string) ([]Record, error) {
	req, err := t.request(ctx, table)
	if err != nil {
		return nil, err
	}
	if query != "" {
		req.SetQueryParam("sysparm_query", query)
	}

	var out listResult
	resp, err := req.SetResult(&out).Get("/{table}")
	if err := t.check("list", table, resp, err); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Create inserts a row.
func (t *RESTTransport) Create(ctx context.Context, table string, payload map[string]string) (*Record, error) {
	req, err := t.request(ctx, table)
	if err != nil {
		return nil, err
	}

	var out singleResult
	resp, err := req.SetBody(payload).SetResult(&out).Post("/{table}")
	if err := t.check("create", table, resp, err); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// Patch updates the given columns of a row.
func (t *RESTTransport) Patch(ctx context.Context, table, sysID string, payload map[string]string) (*Record, error) {
	req, err := t.request(ctx, table)
	if err != nil {
		return nil, err
	}

	var out singleResult
	resp, err := req.SetPathParam("sys_id", sysID).SetBody(payload).SetResult(&out).Patch("/{table}/{sys_id}")
	if err := t.check("patch", table, resp, err); err != nil {
		return nil, err
	}
	return &out.Result, nil
}
