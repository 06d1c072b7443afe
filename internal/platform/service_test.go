package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeGQL routes canned data payloads by query content, decoding them
// into out the way the real client does.
type fakeGQL struct {
	xpUp    string
	xpDown  string
	txns    string // module xp transactions
	skills  string
	audits  string
	profile string
	failOn  string // substring of the query that should fail
	err     error
}

func (f *fakeGQL) Query(_ context.Context, token, query string, vars map[string]any, out any) error {
	if token == "" {
		return errors.New("fake: empty token")
	}
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return f.err
	}

	var payload string
	switch {
	case strings.Contains(query, "transaction_aggregate"):
		if vars["type"] == "up" {
			payload = f.xpUp
		} else {
			payload = f.xpDown
		}
	case strings.Contains(query, "audit(where"):
		payload = f.audits
	case strings.Contains(query, "_like"):
		payload = f.skills
	case strings.Contains(query, "event:"):
		payload = f.txns
	case strings.Contains(query, "user"):
		payload = f.profile
	default:
		return fmt.Errorf("fake: unrouted query %q", query)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(payload), out)
}

func aggregate(amount string) string {
	return fmt.Sprintf(`{"xp":{"aggregate":{"sum":{"amount":%s}}}}`, amount)
}

func newFake() *fakeGQL {
	return &fakeGQL{
		xpUp:   aggregate("1000"),
		xpDown: aggregate("200"),
		txns: `{"transaction":[
			{"id":1,"amount":300,"createdAt":"2024-01-10T12:00:00Z"},
			{"id":2,"amount":200,"createdAt":"2024-02-05T12:00:00Z"}
		]}`,
		skills: `{"transaction":[
			{"id":1,"type":"skill_go","amount":50},
			{"id":2,"type":"skill_js","amount":80},
			{"id":3,"type":"skill_go","amount":10}
		]}`,
		audits:  `{"audits":[{"grade":1.25},{"grade":null},{"grade":0.5}]}`,
		profile: `{"user":[{"id":7,"login":"jdoe","firstName":"Jane","lastName":"Doe","campus":"bahrain","attrs":{"country":"BH"}}]}`,
	}
}

func TestXPSums(t *testing.T) {
	svc := NewService(newFake())

	up, err := svc.XPUp(context.Background(), "tok", 7)
	if err != nil || up != 1000 {
		t.Fatalf("XPUp = %d, %v", up, err)
	}
	down, err := svc.XPDown(context.Background(), "tok", 7)
	if err != nil || down != 200 {
		t.Fatalf("XPDown = %d, %v", down, err)
	}
}

func TestXPSumAbsentIsZero(t *testing.T) {
	f := newFake()
	f.xpUp = aggregate("null")
	svc := NewService(f)

	up, err := svc.XPUp(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("XPUp: %v", err)
	}
	if up != 0 {
		t.Fatalf("XPUp with null sum = %d, want 0", up)
	}
}

func TestXPRatio(t *testing.T) {
	svc := NewService(newFake())

	ratio, err := svc.XPRatio(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("XPRatio: %v", err)
	}
	if ratio.XPUp != 1000 || ratio.XPDown != 200 || ratio.Value != "5.0" {
		t.Fatalf("XPRatio = %+v", ratio)
	}
}

func TestMonthlyModuleXP(t *testing.T) {
	svc := NewService(newFake())

	monthly, err := svc.MonthlyModuleXP(context.Background(), "tok")
	if err != nil {
		t.Fatalf("MonthlyModuleXP: %v", err)
	}
	if len(monthly) != 2 || monthly[0].Date != "2024-1" || monthly[0].XP != 300 ||
		monthly[1].Date != "2024-2" || monthly[1].XP != 200 {
		t.Fatalf("MonthlyModuleXP = %v", monthly)
	}
}

func TestTotalXP(t *testing.T) {
	// xpUp=1000, xpDown=200, module months sum to 500 -> 1300.
	svc := NewService(newFake())

	total, err := svc.TotalXP(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("TotalXP: %v", err)
	}
	if total != 1300 {
		t.Fatalf("TotalXP = %d, want 1300", total)
	}
}

func TestTopSkills(t *testing.T) {
	svc := NewService(newFake())

	skills, err := svc.TopSkills(context.Background(), "tok", 6)
	if err != nil {
		t.Fatalf("TopSkills: %v", err)
	}
	if len(skills) != 2 || skills[0].Type != "skill_js" || skills[0].TotalAmount != 80 ||
		skills[1].Type != "skill_go" || skills[1].TotalAmount != 60 {
		t.Fatalf("TopSkills = %v", skills)
	}
}

func TestAudits(t *testing.T) {
	svc := NewService(newFake())

	grades, err := svc.AuditsDone(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("AuditsDone: %v", err)
	}
	// The nil grade is filtered, order preserved.
	if len(grades) != 2 || grades[0] != 1.25 || grades[1] != 0.5 {
		t.Fatalf("AuditsDone = %v", grades)
	}
}

func TestProfile(t *testing.T) {
	svc := NewService(newFake())

	p, err := svc.Profile(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.ID != 7 || p.Login != "jdoe" || p.Attrs.Country != "BH" {
		t.Fatalf("Profile = %+v", p)
	}
}

func TestProfileMissing(t *testing.T) {
	f := newFake()
	f.profile = `{"user":[]}`
	svc := NewService(f)

	if _, err := svc.Profile(context.Background(), "tok"); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("err = %v, want ErrNoProfile", err)
	}
}

func TestSummary(t *testing.T) {
	svc := NewService(newFake())

	sum, err := svc.Summary(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Profile.Login != "jdoe" {
		t.Fatalf("Profile = %+v", sum.Profile)
	}
	if sum.TotalXP != 1300 || sum.TotalXPDisplay != "1.3k" {
		t.Fatalf("TotalXP = %d (%q)", sum.TotalXP, sum.TotalXPDisplay)
	}
	if sum.Ratio.Value != "5.0" {
		t.Fatalf("Ratio = %+v", sum.Ratio)
	}
	if len(sum.XPPerMonth) != 2 || len(sum.TopSkills) != 2 {
		t.Fatalf("Summary = %+v", sum)
	}
	if len(sum.AuditsDone) != 2 || len(sum.AuditsReceived) != 2 {
		t.Fatalf("audit grades = %v / %v", sum.AuditsDone, sum.AuditsReceived)
	}
}

func TestSummaryPropagatesFailure(t *testing.T) {
	f := newFake()
	f.failOn = "_like"
	f.err = errors.New("skills fetch broke")
	svc := NewService(f)

	if _, err := svc.Summary(context.Background(), "tok"); !errors.Is(err, f.err) {
		t.Fatalf("err = %v, want the skills failure", err)
	}
}
