package supabase

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

// PostgREST answers 406 when Single() matches no row
var ErrNoRows = errors.New("supabase: no rows")

// Query builds one PostgREST request against a table.
type Query struct {
	client  *Client
	table   string
	method  rest.Method
	params  map[string]string
	headers map[string]string
	body    interface{}
	single  bool
}

func (c *Client) From(table string) *Query {
	return &Query{
		client:  c,
		table:   table,
		method:  rest.Get,
		params:  make(map[string]string),
		headers: make(map[string]string),
	}
}

func (q *Query) Select(columns string) *Query {
	q.params["select"] = columns
	return q
}

func (q *Query) Eq(column, value string) *Query {
	q.params[column] = "eq." + value
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params["order"] = column + "." + dir
	return q
}

// Single expects exactly one row and decodes it as an object instead of a list.
func (q *Query) Single() *Query {
	q.single = true
	q.headers["Accept"] = "application/vnd.pgrst.object+json"
	return q
}

// Insert posts row (a struct or a slice of structs) and asks for the stored representation back.
func (q *Query) Insert(row interface{}) *Query {
	q.method = rest.Post
	q.body = row
	q.headers["Prefer"] = "return=representation"
	return q
}

func (q *Query) Delete() *Query {
	q.method = rest.Delete
	return q
}

// Execute sends the request, acting for the user whose access token ctx carries. dest may be nil.
func (q *Query) Execute(ctx context.Context, dest interface{}) error {
	headers := q.client.headers(accessToken(ctx))
	for k, v := range q.headers {
		headers[k] = v
	}

	req := rest.Request{
		Method:      q.method,
		BaseURL:     q.client.url + "/rest/v1/" + q.table,
		Headers:     headers,
		QueryParams: q.params,
	}
	if q.body != nil {
		body, err := json.Marshal(q.body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s row", q.table)
		}
		req.Body = body
	}

	err := q.client.do(ctx, req, dest)
	if apiErr, ok := err.(*Error); ok && q.single && apiErr.Status == http.StatusNotAcceptable {
		return ErrNoRows
	}
	return err
}
