package store

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Control parameters stripped before filters are built.
var reservedParams = map[string]bool{"keyword": true, "page": true, "limit": true}

// Fields whose filter values are compared as numbers rather than strings.
var numericFields = map[string]bool{"price": true, "rating": true, "stock": true, "numOfReviews": true}

var rangeParam = regexp.MustCompile(`^(\w+)\[(gt|gte|lt|lte)\]$`)

// ProductQuery is a composed listing query: a filter plus the page window.
type ProductQuery struct {
	Filter bson.M
	Skip   int64
	Limit  int64
	Page   int
}

// FindOptions returns the driver options for the page window.
func (q ProductQuery) FindOptions() *options.FindOptions {
	return options.Find().SetSkip(q.Skip).SetLimit(q.Limit)
}

// BuildProductQuery composes keyword search, field filters and pagination from
// the listing query string. price[gte]=50 becomes {"price": {"$gte": 50}}.
func BuildProductQuery(params url.Values, pageSize int) ProductQuery {
	filter := bson.M{}

	if keyword := strings.TrimSpace(params.Get("keyword")); keyword != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	}

	for key, values := range params {
		if reservedParams[key] || len(values) == 0 || strings.HasPrefix(key, "$") {
			continue
		}
		value := values[0]
		if m := rangeParam.FindStringSubmatch(key); m != nil {
			field, op := m[1], "$"+m[2]
			cond, ok := filter[field].(bson.M)
			if !ok {
				cond = bson.M{}
				filter[field] = cond
			}
			cond[op] = filterValue(field, value)
			continue
		}
		if strings.ContainsAny(key, "[]") {
			continue
		}
		filter[key] = filterValue(key, value)
	}

	page, err := strconv.Atoi(params.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	skip := int64(math.MaxInt64)
	if pageSize <= 0 || int64(page-1) <= math.MaxInt64/int64(pageSize) {
		skip = int64(pageSize) * int64(page-1)
	}

	return ProductQuery{
		Filter: filter,
		Skip:   skip,
		Limit:  int64(pageSize),
		Page:   page,
	}
}

func filterValue(field, raw string) interface{} {
	if numericFields[field] {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
