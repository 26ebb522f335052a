package health

import "context"

type MockHealthChecker struct {
	DbOk      bool
	ContentOk bool
}

func (m MockHealthChecker) IsDatabaseOK(ctx context.Context) (string, bool) {
	if m.DbOk {
		return "ok", true
	}
	return "database ping error", false
}

func (m MockHealthChecker) IsContentOK(ctx context.Context) (string, bool) {
	if m.ContentOk {
		return "ok", true
	}
	return "Cannot connect to content repository", false
}
