package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// Request parameter names.
const (
	ParamWikilog  = "wikilog"
	ParamItem     = "item"
	ParamShow     = "show"
	ParamCategory = "category"
	ParamAuthor   = "author"
	ParamTag      = "tag"
	ParamYear     = "year"
	ParamMonth    = "month"
	ParamDay      = "day"
	ParamThread   = "thread"
)

// Params is an ordered key to string mapping for building navigation links.
// Keys keep the position of their first Set.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams creates an empty Params.
func NewParams() *Params {
	return &Params{values: map[string]string{}}
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// SetInt stores an integer value.
func (p *Params) SetInt(key string, value int) {
	p.Set(key, strconv.Itoa(value))
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of keys.
func (p *Params) Len() int {
	return len(p.keys)
}

// Values converts to url.Values.
func (p *Params) Values() url.Values {
	v := make(url.Values, len(p.keys))
	for _, k := range p.keys {
		v.Set(k, p.values[k])
	}
	return v
}

// Encode renders a query string in insertion order. url.Values.Encode
// would sort keys.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

// Fingerprint hashes the ordered parameters; equal filter states produce
// equal fingerprints.
func (p *Params) Fingerprint() (string, error) {
	pairs := make(ir.IRArray, len(p.keys))
	for i, k := range p.keys {
		pairs[i] = ir.IRArray{ir.IRString(k), ir.IRString(p.values[k])}
	}
	return ir.Fingerprint(ir.DomainParams, pairs)
}

func setDateParams(p *Params, d *DateSpec) {
	if d == nil {
		return
	}
	p.SetInt(ParamYear, d.Year)
	if d.Month != 0 {
		p.SetInt(ParamMonth, d.Month)
	}
	if d.Day != 0 {
		p.SetInt(ParamDay, d.Day)
	}
}
