package domain

// BootstrapData drives the idempotent seed flow run at startup.
type BootstrapData struct {
	AdminEmail       string
	AdminName        string
	AdminPassword    string
	CreateDemoClient bool
}
