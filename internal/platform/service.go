package platform

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"skillboard/internal/core"
)

// One aggregate query serves both the "up" and "down" sums; the origin
// duplicated it per direction.
const xpAggregateQuery = `
query xpAggregate($userId: Int!, $type: String!) {
  xp: transaction_aggregate(
    where: { userId: { _eq: $userId }, type: { _eq: $type } }
  ) {
    aggregate { sum { amount } }
  }
}`

const auditsDoneQuery = `
query auditsDone($auditorId: Int!) {
  audits: audit(where: { auditorId: { _eq: $auditorId } }) {
    grade
  }
}`

const auditsReceivedQuery = `
query auditsReceived($auditorId: Int!) {
  audits: audit(where: { auditorId: { _neq: $auditorId } }) {
    grade
  }
}`

const moduleXPQuery = `
query {
  transaction(
    where: {
      type: { _eq: "xp" }
      event: { object: { name: { _eq: "Module" } } }
    }
    order_by: { id: asc }
  ) {
    id
    amount
    createdAt
  }
}`

const skillsQuery = `
query {
  transaction(where: { type: { _like: "%skill_%" } }, order_by: { id: asc }) {
    id
    amount
    type
  }
}`

const profileQuery = `
{
  user {
    id
    login
    firstName
    lastName
    campus
    attrs
  }
}`

// ErrNoProfile means the user query returned no rows for the credential.
var ErrNoProfile = errors.New("no profile for credential")

// QueryClient is the transport the facade runs on.
type QueryClient interface {
	Query(ctx context.Context, token, query string, variables map[string]any, out any) error
}

// Service is the profile/metrics facade. It owns no state beyond the
// query client; the credential arrives with every call.
type Service struct {
	gql QueryClient
}

var (
	_ ProfileReader = (*Service)(nil)
	_ XPReader      = (*Service)(nil)
	_ AuditReader   = (*Service)(nil)
	_ SkillReader   = (*Service)(nil)
	_ SummaryReader = (*Service)(nil)
)

func NewService(gql QueryClient) *Service {
	return &Service{gql: gql}
}

// Typed response shapes, decoded at the query boundary.
type (
	aggregateSumResult struct {
		XP struct {
			Aggregate struct {
				Sum struct {
					Amount *int64 `json:"amount"`
				} `json:"sum"`
			} `json:"aggregate"`
		} `json:"xp"`
	}

	auditsResult struct {
		Audits []core.Audit `json:"audits"`
	}

	transactionsResult struct {
		Transaction []core.Transaction `json:"transaction"`
	}

	profileResult struct {
		User []core.UserProfile `json:"user"`
	}
)

func (s *Service) xpSum(ctx context.Context, token string, userID int64, typ string) (int64, error) {
	var res aggregateSumResult
	vars := map[string]any{"userId": userID, "type": typ}
	if err := s.gql.Query(ctx, token, xpAggregateQuery, vars, &res); err != nil {
		return 0, err
	}
	// Absent sum means no matching rows, which counts as 0.
	if res.XP.Aggregate.Sum.Amount == nil {
		return 0, nil
	}
	return *res.XP.Aggregate.Sum.Amount, nil
}

func (s *Service) XPUp(ctx context.Context, token string, userID int64) (int64, error) {
	return s.xpSum(ctx, token, userID, core.TypeXPUp)
}

func (s *Service) XPDown(ctx context.Context, token string, userID int64) (int64, error) {
	return s.xpSum(ctx, token, userID, core.TypeXPDown)
}

// XPRatio composes the directional sums into the ratio metric. The two
// sums are independent reads and run concurrently.
func (s *Service) XPRatio(ctx context.Context, token string, userID int64) (core.Ratio, error) {
	var up, down int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		up, err = s.XPUp(gctx, token, userID)
		return err
	})
	g.Go(func() (err error) {
		down, err = s.XPDown(gctx, token, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Ratio{}, err
	}
	return core.ComputeRatio(up, down), nil
}

func (s *Service) audits(ctx context.Context, token, query string, userID int64) ([]float64, error) {
	var res auditsResult
	vars := map[string]any{"auditorId": userID}
	if err := s.gql.Query(ctx, token, query, vars, &res); err != nil {
		return nil, err
	}
	return core.ValidGrades(res.Audits), nil
}

func (s *Service) AuditsDone(ctx context.Context, token string, userID int64) ([]float64, error) {
	return s.audits(ctx, token, auditsDoneQuery, userID)
}

func (s *Service) AuditsReceived(ctx context.Context, token string, userID int64) ([]float64, error) {
	return s.audits(ctx, token, auditsReceivedQuery, userID)
}

func (s *Service) MonthlyModuleXP(ctx context.Context, token string) ([]core.MonthlyXP, error) {
	var res transactionsResult
	if err := s.gql.Query(ctx, token, moduleXPQuery, nil, &res); err != nil {
		return nil, err
	}
	return core.BucketByMonth(res.Transaction), nil
}

// TotalXP nets the directional sums against module-derived XP:
// xpUp - xpDown + sum of monthly module xp.
func (s *Service) TotalXP(ctx context.Context, token string, userID int64) (int64, error) {
	var (
		up, down int64
		monthly  []core.MonthlyXP
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		up, err = s.XPUp(gctx, token, userID)
		return err
	})
	g.Go(func() (err error) {
		down, err = s.XPDown(gctx, token, userID)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.MonthlyModuleXP(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return core.TotalXP(up, down, monthly), nil
}

func (s *Service) TopSkills(ctx context.Context, token string, n int) ([]core.SkillTotal, error) {
	var res transactionsResult
	if err := s.gql.Query(ctx, token, skillsQuery, nil, &res); err != nil {
		return nil, err
	}
	return core.TopSkills(res.Transaction, n), nil
}

func (s *Service) Profile(ctx context.Context, token string) (core.UserProfile, error) {
	var res profileResult
	if err := s.gql.Query(ctx, token, profileQuery, nil, &res); err != nil {
		return core.UserProfile{}, err
	}
	if len(res.User) == 0 {
		return core.UserProfile{}, ErrNoProfile
	}
	return res.User[0], nil
}

// Summary is the full dashboard payload.
type Summary struct {
	Profile        core.UserProfile  `json:"profile"`
	Ratio          core.Ratio        `json:"ratio"`
	TotalXP        int64             `json:"totalXp"`
	TotalXPDisplay string            `json:"totalXpDisplay"`
	XPPerMonth     []core.MonthlyXP  `json:"xpPerMonth"`
	TopSkills      []core.SkillTotal `json:"topSkills"`
	AuditsDone     []float64         `json:"auditsDone"`
	AuditsReceived []float64         `json:"auditsReceived"`
}

// Summary resolves the profile first (the other reads need the user id),
// then fans the independent metric reads out concurrently. Any single
// failure fails the whole summary; callers can fall back to the
// per-widget endpoints, which fail independently.
func (s *Service) Summary(ctx context.Context, token string) (Summary, error) {
	profile, err := s.Profile(ctx, token)
	if err != nil {
		return Summary{}, err
	}

	var (
		up, down       int64
		monthly        []core.MonthlyXP
		skills         []core.SkillTotal
		auditsDone     []float64
		auditsReceived []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		up, err = s.XPUp(gctx, token, profile.ID)
		return err
	})
	g.Go(func() (err error) {
		down, err = s.XPDown(gctx, token, profile.ID)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.MonthlyModuleXP(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		skills, err = s.TopSkills(gctx, token, core.DefaultTopSkills)
		return err
	})
	g.Go(func() (err error) {
		auditsDone, err = s.AuditsDone(gctx, token, profile.ID)
		return err
	})
	g.Go(func() (err error) {
		auditsReceived, err = s.AuditsReceived(gctx, token, profile.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	total := core.TotalXP(up, down, monthly)
	slog.DebugContext(ctx, "Dashboard summary assembled",
		"user", profile.Login, "total_xp", total, "skills", len(skills))

	return Summary{
		Profile:        profile,
		Ratio:          core.ComputeRatio(up, down),
		TotalXP:        total,
		TotalXPDisplay: core.FormatXP(total),
		XPPerMonth:     monthly,
		TopSkills:      skills,
		AuditsDone:     auditsDone,
		AuditsReceived: auditsReceived,
	}, nil
}
