package arcade

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams expresses the list options collection endpoints accept on the
// initial request (paging hints, ordering, filters such as "states" or
// "queue_ids"). Pages after the first are addressed solely by the response's
// Link header, which already encodes the server's continuation parameters.
type QueryParams struct {
	Page    int
	PerPage int
	OrderBy string
	Include []string
	Fields  map[string][]string
	Filters map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Fields:  make(map[string][]string),
		Filters: make(map[string][]string),
	}
}

// WithPage sets the requested page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the requested page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the sort field; prefix with "-" for descending.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithInclude appends related resources to embed in the response.
func (q *QueryParams) WithInclude(includes ...string) *QueryParams {
	q.Include = append(q.Include, includes...)

	return q
}

// WithFields replaces the selected fields for a resource type.
func (q *QueryParams) WithFields(resource string, fields ...string) *QueryParams {
	if q.Fields == nil {
		q.Fields = make(map[string][]string)
	}

	q.Fields[resource] = fields

	return q
}

// WithFilter appends filter values for a key.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// ToValues renders the params as URL query values. Nil params render empty.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if len(q.Include) > 0 {
		values.Set("include", strings.Join(q.Include, ","))
	}

	for resource, fields := range q.Fields {
		if len(fields) > 0 {
			values.Set("fields["+resource+"]", strings.Join(fields, ","))
		}
	}

	for key, filterValues := range q.Filters {
		if len(filterValues) > 0 {
			values.Set(key, strings.Join(filterValues, ","))
		}
	}

	return values
}
