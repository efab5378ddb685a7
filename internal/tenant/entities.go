package tenant

// Entity describes a table with a direct tenant column.
type Entity struct {
	Table        string
	TenantColumn string
}

// ChildEntity describes a table owned transitively through a parent entity,
// e.g. a document owned by a client owned by a tenant.
type ChildEntity struct {
	Table      string
	ForeignKey string
	Parent     Entity
}

// Business entities known to the accessor.
var (
	Clients         = Entity{Table: "clients", TenantColumn: "tenant_id"}
	Filings         = Entity{Table: "filings", TenantColumn: "tenant_id"}
	ServiceRequests = Entity{Table: "service_requests", TenantColumn: "tenant_id"}
	Users           = Entity{Table: "users", TenantColumn: "tenant_id"}

	Documents = ChildEntity{Table: "documents", ForeignKey: "client_id", Parent: Clients}
)
