package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

func TestValidate_ValidDescriptor(t *testing.T) {
	assert.NoError(t, Validate(sampleDescriptor()))
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Descriptor)
		want   string
	}{
		{
			name:   "join on unknown table",
			mutate: func(d *Descriptor) { d.Joins["wikilog_tags"] = Join{Kind: InnerJoin, On: ColumnEquals{Left: "wlp_page", Right: "wlt_page"}} },
			want:   `join "wikilog_tags": table not in table set`,
		},
		{
			name:   "join on first table",
			mutate: func(d *Descriptor) { d.Joins["wikilog_posts"] = Join{Kind: InnerJoin, On: False{}} },
			want:   "first table cannot be joined",
		},
		{
			name:   "missing join condition",
			mutate: func(d *Descriptor) { d.Joins["p"] = Join{Kind: LeftJoin} },
			want:   "missing join condition",
		},
		{
			name:   "unknown join kind",
			mutate: func(d *Descriptor) { d.Joins["p"] = Join{Kind: "CROSS", On: False{}} },
			want:   "unknown join kind",
		},
		{
			name:   "duplicate table key",
			mutate: func(d *Descriptor) { d.Tables = append(d.Tables, Table{Name: "page", Alias: "p"}) },
			want:   "duplicate table key",
		},
		{
			name:   "field references unknown alias",
			mutate: func(d *Descriptor) { d.AddFields(Field{Expr: "MAX(c.wlc_updated)", As: "x"}) },
			want:   `references unknown table "c"`,
		},
		{
			name:   "condition references unknown alias",
			mutate: func(d *Descriptor) { d.Where(Equals{Column: "w.page_namespace", Value: ir.IRInt(100)}) },
			want:   `references unknown table "w"`,
		},
		{
			name:   "nil condition",
			mutate: func(d *Descriptor) { d.Where(nil) },
			want:   "nil predicate",
		},
		{
			name:   "missing value",
			mutate: func(d *Descriptor) { d.Where(Equals{Column: "wlp_publish"}) },
			want:   "missing value",
		},
		{
			name:   "bad operator",
			mutate: func(d *Descriptor) { d.Where(Compare{Column: "wlp_pubdate", Op: "~", Value: ir.IRString("x")}) },
			want:   "unknown comparison operator",
		},
		{
			name:   "group by unknown alias",
			mutate: func(d *Descriptor) { d.Options.GroupBy = []string{"x.wlp_page"} },
			want:   "group_by[0]",
		},
		{
			name:   "no fields",
			mutate: func(d *Descriptor) { d.Fields = nil },
			want:   "selects no fields",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDescriptor()
			tt.mutate(d)
			err := Validate(d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	d := NewDescriptor()
	err := Validate(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tables")
	assert.Contains(t, err.Error(), "no fields")
}
