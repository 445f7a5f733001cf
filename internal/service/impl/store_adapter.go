package impl

import "shopauth/internal/store"

// gormStoreAdapter narrows *store.Store to the interfaces the
// orchestrator consumes.
type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) Users() userStore                 { return g.store.Users() }
func (g gormStoreAdapter) Roles() roleStore                 { return g.store.Roles() }
func (g gormStoreAdapter) Codes() codeStore                 { return g.store.VerificationCodes() }
func (g gormStoreAdapter) RefreshTokens() refreshTokenStore { return g.store.RefreshTokens() }
func (g gormStoreAdapter) Devices() deviceStore             { return g.store.Devices() }
