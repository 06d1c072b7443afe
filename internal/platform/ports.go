// Package platform composes the query client into the named metrics the
// dashboard shows. Every operation is an independent, stateless,
// retryable read; the caller's bearer token is passed explicitly.
package platform

import (
	"context"

	"skillboard/internal/core"
)

// Ports consumed by the HTTP layer.
type (
	ProfileReader interface {
		// Profile returns the signed-in user's own record.
		Profile(ctx context.Context, token string) (core.UserProfile, error)
	}

	XPReader interface {
		XPUp(ctx context.Context, token string, userID int64) (int64, error)
		XPDown(ctx context.Context, token string, userID int64) (int64, error)
		XPRatio(ctx context.Context, token string, userID int64) (core.Ratio, error)
		// MonthlyModuleXP buckets all module-object "xp" transactions by month.
		MonthlyModuleXP(ctx context.Context, token string) ([]core.MonthlyXP, error)
		TotalXP(ctx context.Context, token string, userID int64) (int64, error)
	}

	AuditReader interface {
		// AuditsDone returns the valid grades of audits the user performed.
		AuditsDone(ctx context.Context, token string, userID int64) ([]float64, error)
		// AuditsReceived returns the valid grades of audits performed on the user.
		AuditsReceived(ctx context.Context, token string, userID int64) ([]float64, error)
	}

	SkillReader interface {
		TopSkills(ctx context.Context, token string, n int) ([]core.SkillTotal, error)
	}

	SummaryReader interface {
		// Summary fetches everything the dashboard page needs in one go.
		Summary(ctx context.Context, token string) (Summary, error)
	}
)
