package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apimodel/internal/config"
	"github.com/kolah/apimodel/internal/definition"
	"github.com/kolah/apimodel/internal/grouping"
	"github.com/kolah/apimodel/internal/model"
	"github.com/kolah/apimodel/internal/resolver"
)

func jsonContent(s *model.Schema) []model.MediaTypeContent {
	return []model.MediaTypeContent{{MediaType: "application/json", Schema: s}}
}

func shopSpec() *model.Spec {
	petRef := &model.Schema{Ref: "#/components/schemas/User", Types: model.TypeObject}
	id := model.Parameter{Name: "id", In: model.LocationPath, Required: true, Schema: &model.Schema{Types: model.TypeInteger, Format: "int64"}}

	return &model.Spec{
		Tags: []model.Tag{{Name: "Users", Description: "User management"}},
		Operations: []model.Operation{
			{
				ID: "listUsers", Method: model.MethodGet, Path: "/users", Tags: []string{"Users"},
				Summary: "List users",
				Parameters: []model.Parameter{
					{Name: "page_size", In: model.LocationQuery, Description: "Page size", Schema: &model.Schema{Types: model.TypeInteger, Default: 20}},
					{Name: "X-Request-Id", In: model.LocationHeader, Schema: &model.Schema{Types: model.TypeString, Format: "uuid"}},
					{Name: "session", In: model.LocationCookie, Schema: &model.Schema{Types: model.TypeString}},
				},
				Responses: []model.Response{
					{StatusCode: "200", Content: jsonContent(&model.Schema{Types: model.TypeArray, Items: petRef})},
				},
			},
			{
				ID: "getUser", Method: model.MethodGet, Path: "/users/{id}", Tags: []string{"Users"},
				Description: "Fetch one user",
				Parameters:  []model.Parameter{id},
				Responses: []model.Response{
					{StatusCode: "404"},
					{StatusCode: "200", Content: []model.MediaTypeContent{
						{MediaType: "application/xml", Schema: &model.Schema{Types: model.TypeString}},
						{MediaType: "application/json", Schema: petRef},
					}},
				},
			},
			{
				ID: "updateUser", Method: model.MethodPut, Path: "/users/{id}", Tags: []string{"Users"},
				Parameters:  []model.Parameter{id},
				RequestBody: &model.RequestBody{Required: true, Description: "New state", Content: jsonContent(petRef)},
				Responses:   []model.Response{{StatusCode: "204", Description: "updated"}},
			},
			{
				Method: model.MethodDelete, Path: "/users/{id}", Tags: []string{"Users"}, Deprecated: true,
				Parameters: []model.Parameter{id},
				Responses:  []model.Response{{StatusCode: "default"}},
			},
			{
				ID: "listProducts", Method: model.MethodGet, Path: "/products", Tags: []string{"Products"},
				Responses: []model.Response{{StatusCode: "2XX", Content: jsonContent(&model.Schema{Types: model.TypeObject, AdditionalProperties: &model.Schema{Types: model.TypeNumber}})}},
			},
			{
				ID: "listPendingOrders", Method: model.MethodGet, Path: "/orders/pending", Tags: []string{"Orders"},
			},
			{
				ID: "listCompletedOrders", Method: model.MethodGet, Path: "/orders/completed", Tags: []string{"Orders"},
			},
		},
	}
}

func TestControllersByTag(t *testing.T) {
	controllers := New(config.DefaultGenerator()).Controllers(shopSpec())

	require.Len(t, controllers, 3)
	require.Equal(t, "Users", controllers[0].Name)
	require.Equal(t, "Products", controllers[1].Name)
	require.Equal(t, "Orders", controllers[2].Name)
	require.Len(t, controllers[0].Methods, 4)
	require.Len(t, controllers[1].Methods, 1)
	require.Len(t, controllers[2].Methods, 2)

	users := controllers[0]
	require.Equal(t, "/users", users.Route)
	require.Equal(t, "User management", users.Documentation)
	require.Empty(t, controllers[1].Documentation)

	t.Run("list with query header and cookie", func(t *testing.T) {
		m := users.Methods[0]
		require.Equal(t, "ListUsers", m.Name)
		require.Equal(t, "listUsers", m.OperationID)
		require.Equal(t, "GET", m.HTTPMethod)
		require.Equal(t, "", m.Route)
		require.Equal(t, "List users", m.Documentation)
		require.Equal(t, resolver.ArrayOf(resolver.Reference("User")), m.ReturnType)

		require.Len(t, m.Parameters, 3)
		pageSize := m.Parameters[0]
		require.Equal(t, "page_size", pageSize.Name)
		require.Equal(t, "PageSize", pageSize.Identifier)
		require.Equal(t, definition.SourceQuery, pageSize.Source)
		require.Equal(t, resolver.Prim(resolver.Int32), pageSize.Type)
		require.False(t, pageSize.Required)
		require.Equal(t, "20", *pageSize.DefaultValue)
		require.Equal(t, "Page size", pageSize.Documentation)

		require.Equal(t, definition.SourceHeader, m.Parameters[1].Source)
		require.Equal(t, resolver.Prim(resolver.UUID), m.Parameters[1].Type)
		require.Equal(t, definition.SourceDefault, m.Parameters[2].Source)
	})

	t.Run("get prefers json and skips non-2xx", func(t *testing.T) {
		m := users.Methods[1]
		require.Equal(t, "GetUser", m.Name)
		require.Equal(t, "{id}", m.Route)
		require.Equal(t, "Fetch one user", m.Documentation)
		require.Equal(t, resolver.Reference("User"), m.ReturnType)

		require.Len(t, m.Parameters, 1)
		require.Equal(t, definition.SourcePath, m.Parameters[0].Source)
		require.Equal(t, resolver.Prim(resolver.Int64), m.Parameters[0].Type)
		require.True(t, m.Parameters[0].Required)
	})

	t.Run("body is the trailing parameter", func(t *testing.T) {
		m := users.Methods[2]
		require.Equal(t, resolver.NoContent(), m.ReturnType)
		require.Len(t, m.Parameters, 2)

		body := m.Parameters[1]
		require.Equal(t, "body", body.Name)
		require.Equal(t, definition.SourceBody, body.Source)
		require.True(t, body.Required)
		require.Equal(t, resolver.Reference("User"), body.Type)
		require.Equal(t, "New state", body.Documentation)
	})

	t.Run("derived name and deprecation", func(t *testing.T) {
		m := users.Methods[3]
		require.Equal(t, "DeleteUsersById", m.Name)
		require.Empty(t, m.OperationID)
		require.True(t, m.Deprecated)
		require.Equal(t, resolver.NoContent(), m.ReturnType)
	})

	t.Run("2XX range response", func(t *testing.T) {
		m := controllers[1].Methods[0]
		require.Equal(t, resolver.MapOf(resolver.Prim(resolver.Decimal)), m.ReturnType)
	})

	t.Run("no responses", func(t *testing.T) {
		orders := controllers[2]
		require.Equal(t, "/orders", orders.Route)
		require.Equal(t, "pending", orders.Methods[0].Route)
		require.Equal(t, "completed", orders.Methods[1].Route)
		require.Equal(t, resolver.NoContent(), orders.Methods[0].ReturnType)
	})
}

func TestControllersByPath(t *testing.T) {
	cfg := config.DefaultGenerator()
	cfg.ControllerGroupingStrategy = string(grouping.ByPath)

	controllers := New(cfg).Controllers(shopSpec())

	names := make([]string, 0, len(controllers))
	for _, c := range controllers {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"Users", "Products", "OrdersPending", "OrdersCompleted"}, names)
	require.Equal(t, "/orders/pending", controllers[2].Route)
	require.Equal(t, "", controllers[2].Methods[0].Route)
	require.Empty(t, controllers[0].Documentation, "tag docs only apply when grouping by tag")
}

func TestControllersByFirstPathSegment(t *testing.T) {
	spec := &model.Spec{Operations: []model.Operation{
		{ID: "listPendingOrders", Method: model.MethodGet, Path: "/orders/pending"},
		{ID: "listCompletedOrders", Method: model.MethodGet, Path: "/orders/completed"},
		{ID: "tenantInvoices", Method: model.MethodGet, Path: "/{tenant}/invoices"},
	}}

	cfg := config.DefaultGenerator()
	cfg.ControllerGroupingStrategy = string(grouping.ByFirstPathSegment)
	controllers := New(cfg).Controllers(spec)

	require.Len(t, controllers, 2)
	require.Equal(t, "Orders", controllers[0].Name)
	require.Len(t, controllers[0].Methods, 2)
	require.Equal(t, "ListPendingOrders", controllers[0].Methods[0].Name)
	require.Equal(t, "ListCompletedOrders", controllers[0].Methods[1].Name)

	require.Equal(t, "Invoices", controllers[1].Name)
	require.Equal(t, "/", controllers[1].Route)
	require.Equal(t, "{tenant}/invoices", controllers[1].Methods[0].Route)
}

func TestControllersDuplicateNames(t *testing.T) {
	spec := &model.Spec{Operations: []model.Operation{
		{ID: "search", Method: model.MethodGet, Path: "/items", Tags: []string{"Items"}},
		{ID: "search", Method: model.MethodPost, Path: "/items", Tags: []string{"Items"}},
		{ID: "search2", Method: model.MethodGet, Path: "/items/x", Tags: []string{"Items"}},
		{ID: "search", Method: model.MethodPut, Path: "/items", Tags: []string{"Items"}},
	}}

	controllers := New(config.DefaultGenerator()).Controllers(spec)
	require.Len(t, controllers, 1)

	var names []string
	for _, m := range controllers[0].Methods {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"Search", "Search2", "Search22", "Search3"}, names)
}

func TestControllersWithoutDocumentation(t *testing.T) {
	cfg := config.DefaultGenerator()
	cfg.GenerateXMLDocumentation = false

	controllers := New(cfg).Controllers(shopSpec())
	require.Empty(t, controllers[0].Documentation)
	for _, m := range controllers[0].Methods {
		require.Empty(t, m.Documentation)
		for _, p := range m.Parameters {
			require.Empty(t, p.Documentation)
		}
	}
}

func TestMethodName(t *testing.T) {
	tests := []struct {
		op       model.Operation
		expected string
	}{
		{model.Operation{ID: "getUserById"}, "GetUserById"},
		{model.Operation{ID: "list-users"}, "ListUsers"},
		{model.Operation{Method: model.MethodGet, Path: "/users/{userId}/orders"}, "GetUsersByUserIdOrders"},
		{model.Operation{Method: model.MethodPost, Path: "/"}, "Post"},
		{model.Operation{Method: model.MethodGet, Path: "/files/{name}.json"}, "GetFilesByName"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, methodName(&tt.op))
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	ops := func(paths ...string) []*model.Operation {
		out := make([]*model.Operation, 0, len(paths))
		for _, p := range paths {
			out = append(out, &model.Operation{Path: p})
		}
		return out
	}

	require.Equal(t, []string{"users"}, commonPrefix(ops("/users", "/users/{id}")))
	require.Equal(t, []string{"api", "v1"}, commonPrefix(ops("/api/v1/a", "/api/v1/b")))
	require.Empty(t, commonPrefix(ops("/a", "/b")))
	require.Empty(t, commonPrefix(ops("/{tenant}/a")))
	require.Empty(t, commonPrefix(nil))
}
