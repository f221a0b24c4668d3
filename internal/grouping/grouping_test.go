package grouping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apimodel/internal/model"
)

func op(id, path string, tags ...string) model.Operation {
	return model.Operation{ID: id, Method: model.MethodGet, Path: path, Tags: tags}
}

// groupingAPI mirrors a small shop API: users, products and two order listings.
func groupingAPI() []model.Operation {
	return []model.Operation{
		op("listUsers", "/users", "Users"),
		op("getUser", "/users/{id}", "Users"),
		op("listProducts", "/products", "Products"),
		op("listPendingOrders", "/orders/pending", "Orders"),
		op("listCompletedOrders", "/orders/completed", "Orders"),
	}
}

type groupSummary struct {
	Name string
	IDs  []string
}

func summarize(groups []Group) []groupSummary {
	out := make([]groupSummary, 0, len(groups))
	for _, g := range groups {
		s := groupSummary{Name: g.Name}
		for _, o := range g.Operations {
			s.IDs = append(s.IDs, o.ID)
		}
		out = append(out, s)
	}
	return out
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		ops      []model.Operation
		expected []groupSummary
	}{
		{
			name:     "by tag",
			strategy: ByTag,
			ops:      groupingAPI(),
			expected: []groupSummary{
				{"Users", []string{"listUsers", "getUser"}},
				{"Products", []string{"listProducts"}},
				{"Orders", []string{"listPendingOrders", "listCompletedOrders"}},
			},
		},
		{
			name:     "by first path segment",
			strategy: ByFirstPathSegment,
			ops:      groupingAPI(),
			expected: []groupSummary{
				{"Users", []string{"listUsers", "getUser"}},
				{"Products", []string{"listProducts"}},
				{"Orders", []string{"listPendingOrders", "listCompletedOrders"}},
			},
		},
		{
			name:     "by path",
			strategy: ByPath,
			ops:      groupingAPI(),
			expected: []groupSummary{
				{"Users", []string{"listUsers", "getUser"}},
				{"Products", []string{"listProducts"}},
				{"OrdersPending", []string{"listPendingOrders"}},
				{"OrdersCompleted", []string{"listCompletedOrders"}},
			},
		},
		{
			name:     "untagged operations fall back to first segment",
			strategy: ByTag,
			ops: []model.Operation{
				op("a", "/Pets/{id}"),
				op("b", "/stores", "Stores"),
				op("c", "/pets"),
			},
			expected: []groupSummary{
				{"Pets", []string{"a", "c"}},
				{"Stores", []string{"b"}},
			},
		},
		{
			name:     "only the first tag is used",
			strategy: ByTag,
			ops: []model.Operation{
				op("a", "/x", "Alpha", "Beta"),
				op("b", "/y", "Beta"),
				op("c", "/z", "Alpha"),
			},
			expected: []groupSummary{
				{"Alpha", []string{"a", "c"}},
				{"Beta", []string{"b"}},
			},
		},
		{
			name:     "tag names are normalized",
			strategy: ByTag,
			ops: []model.Operation{
				op("a", "/x", "user-accounts"),
				op("b", "/y", "userAccounts"),
			},
			expected: []groupSummary{
				{"UserAccounts", []string{"a", "b"}},
			},
		},
		{
			name:     "leading placeholder is skipped",
			strategy: ByFirstPathSegment,
			ops: []model.Operation{
				op("a", "/{tenant}/invoices"),
				op("b", "/invoices/{id}"),
			},
			expected: []groupSummary{
				{"Invoices", []string{"a", "b"}},
			},
		},
		{
			name:     "root path lands in default group",
			strategy: ByTag,
			ops: []model.Operation{
				op("root", "/"),
				op("health", "/health"),
				op("params", "/{id}"),
			},
			expected: []groupSummary{
				{DefaultGroup, []string{"root", "params"}},
				{"Health", []string{"health"}},
			},
		},
		{
			name:     "root path by path",
			strategy: ByPath,
			ops:      []model.Operation{op("root", "/")},
			expected: []groupSummary{{DefaultGroup, []string{"root"}}},
		},
		{
			name:     "no operations",
			strategy: ByPath,
			ops:      nil,
			expected: []groupSummary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, summarize(Partition(tt.strategy, tt.ops)))
		})
	}
}

func TestPartitionKeys(t *testing.T) {
	groups := Partition(ByFirstPathSegment, []model.Operation{
		op("listPendingOrders", "/orders/pending"),
		op("listCompletedOrders", "/orders/completed"),
	})
	require.Len(t, groups, 1)
	require.Equal(t, "orders", groups[0].Key)

	groups = Partition(ByPath, []model.Operation{
		op("listPendingOrders", "/orders/pending"),
		op("listCompletedOrders", "/orders/completed"),
	})
	require.Len(t, groups, 2)
	require.Equal(t, "/orders/pending", groups[0].Key)
	require.Equal(t, "/orders/completed", groups[1].Key)
}

func TestPartitionKeepsEveryOperationOnce(t *testing.T) {
	ops := append(groupingAPI(),
		op("root", "/"),
		op("untagged", "/misc/{id}/items"),
		op("multi", "/users/{id}/orders", "Orders", "Users"),
	)

	for _, strategy := range Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			groups := Partition(strategy, ops)

			seen := make(map[*model.Operation]int)
			for _, g := range groups {
				for _, o := range g.Operations {
					seen[o]++
				}
			}
			require.Len(t, seen, len(ops))
			for i := range ops {
				require.Equal(t, 1, seen[&ops[i]], ops[i].ID)
			}

			require.Equal(t, summarize(groups), summarize(Partition(strategy, ops)), "partition must be deterministic")
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
		wantErr  bool
	}{
		{"ByTag", ByTag, false},
		{"bytag", ByTag, false},
		{"BYFIRSTPATHSEGMENT", ByFirstPathSegment, false},
		{" ByPath ", ByPath, false},
		{"ByOperation", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	require.Equal(t, []string{"users", "{id}", "orders"}, Segments("/users/{id}/orders/"))
	require.Equal(t, []string{"users", "orders"}, StaticSegments("/users/{id}/orders"))
	require.Equal(t, "users", FirstStaticSegment("/{tenant}/users"))
	require.Empty(t, FirstStaticSegment("/"))
	require.True(t, IsParameter("{id}"))
	require.False(t, IsParameter("id"))
}
