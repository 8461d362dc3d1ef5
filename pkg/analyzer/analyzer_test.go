package analyzer

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

func rec(sender, body string, ts time.Time) parser.MessageRecord {
	return parser.MessageRecord{
		ParsedTimestamp: parser.NewParsedTimestamp(ts),
		Sender:          sender,
		Body:            body,
	}
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// testRecords is a small chat spanning two months and three senders.
func testRecords() []parser.MessageRecord {
	return []parser.MessageRecord{
		rec(parser.GroupNotification, "Alice created group \"Trip\"\n", at(2023, time.February, 1, 14, 0)),
		rec("Alice", "pizza tonight? https://example.com/menu\n", at(2023, time.February, 1, 14, 5)),
		rec("Bob", "Pizza pizza 😂😂\n", at(2023, time.February, 1, 14, 30)),
		rec("Alice", "<Media omitted>\n", at(2023, time.February, 2, 9, 0)),
		rec("Carol", "see golang.org and https://example.com/menu 🎉\n", at(2023, time.March, 5, 23, 10)),
		rec("Alice", "ok tonight\n", at(2023, time.March, 5, 23, 45)),
	}
}

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(nil)
	if a == nil {
		t.Fatal("NewAnalyzer() returned nil")
	}
	if a.topWords != config.DefaultTopWords {
		t.Errorf("topWords = %d, want %d", a.topWords, config.DefaultTopWords)
	}
	if !a.stopWords["the"] {
		t.Error("default stop words should include \"the\"")
	}
	if a.urls == nil {
		t.Error("URL matcher should default to xurls")
	}
}

func TestNewAnalyzer_OptionsOverrideConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TopWords = 3

	a := NewAnalyzer(cfg,
		WithTopWords(1),
		WithTopUsers(2),
		WithStopWords([]string{"x"}),
		WithMediaPlaceholders([]string{"<attached>"}),
	)

	if a.topWords != 1 {
		t.Errorf("topWords = %d, want 1", a.topWords)
	}
	if a.topUsers != 2 {
		t.Errorf("topUsers = %d, want 2", a.topUsers)
	}
	if a.stopWords["the"] || !a.stopWords["x"] {
		t.Errorf("stopWords = %v, want only x", a.stopWords)
	}
	if !reflect.DeepEqual(a.mediaPlaceholders, []string{"<attached>"}) {
		t.Errorf("mediaPlaceholders = %v", a.mediaPlaceholders)
	}
}

func TestAnalyze_Overall(t *testing.T) {
	a := NewAnalyzer(config.DefaultConfig())
	result, err := a.Analyze(context.Background(), testRecords(), Overall)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.User != Overall {
		t.Errorf("User = %q, want %q", result.User, Overall)
	}

	wantTop := TopStats{Messages: 6, Words: 19, Media: 1, Links: 2}
	if result.Top != wantTop {
		t.Errorf("Top = %+v, want %+v", result.Top, wantTop)
	}

	if len(result.ActiveUsers) != 4 {
		t.Fatalf("ActiveUsers = %d, want 4", len(result.ActiveUsers))
	}
	if result.ActiveUsers[0].Name != "Alice" || result.ActiveUsers[0].Count != 3 {
		t.Errorf("ActiveUsers[0] = %+v, want Alice/3", result.ActiveUsers[0])
	}
	if result.ActiveUsers[0].Percent != 50 {
		t.Errorf("ActiveUsers[0].Percent = %v, want 50", result.ActiveUsers[0].Percent)
	}

	if !result.HasData() {
		t.Error("HasData() = false, want true")
	}
}

func TestAnalyze_SingleUser(t *testing.T) {
	a := NewAnalyzer(config.DefaultConfig())
	result, err := a.Analyze(context.Background(), testRecords(), "Alice")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Top.Messages != 3 {
		t.Errorf("Messages = %d, want 3", result.Top.Messages)
	}
	if result.Top.Media != 1 {
		t.Errorf("Media = %d, want 1", result.Top.Media)
	}
	if result.ActiveUsers != nil || result.UserShares != nil {
		t.Error("ActiveUsers/UserShares should be empty for a single user")
	}

	// Every word appears once, so first appearance decides the order.
	if len(result.CommonWords) == 0 || result.CommonWords[0] != (Count{Key: "pizza", Count: 1}) {
		t.Errorf("CommonWords = %v", result.CommonWords)
	}
}

func TestAnalyze_EmptyUserMeansOverall(t *testing.T) {
	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), testRecords(), "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.User != Overall || result.Top.Messages != 6 {
		t.Errorf("User/Messages = %q/%d, want Overall/6", result.User, result.Top.Messages)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := NewAnalyzer(nil)

	for _, user := range []string{Overall, "Nobody"} {
		result, err := a.Analyze(context.Background(), nil, user)
		if err != nil {
			t.Fatalf("Analyze(%q) error = %v", user, err)
		}
		if result.HasData() {
			t.Errorf("Analyze(%q) HasData() = true", user)
		}
		if result.Top != (TopStats{}) {
			t.Errorf("Analyze(%q) Top = %+v, want zero", user, result.Top)
		}
		if len(result.CommonWords) != 0 || len(result.Monthly) != 0 || len(result.Daily) != 0 ||
			len(result.WeekActivity) != 0 || len(result.MonthActivity) != 0 || len(result.Emojis) != 0 {
			t.Errorf("Analyze(%q) returned non-empty tables: %+v", user, result)
		}
		if result.Heatmap.Max() != 0 {
			t.Errorf("Analyze(%q) heatmap max = %d, want 0", user, result.Heatmap.Max())
		}
	}
}

func TestAnalyze_UnknownUser(t *testing.T) {
	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), testRecords(), "Mallory")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.HasData() {
		t.Error("HasData() = true for unknown user")
	}
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(nil).Analyze(ctx, testRecords(), Overall)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyze_CustomURLMatcher(t *testing.T) {
	a := NewAnalyzer(nil, WithURLMatcher(regexp.MustCompile(`https://\S+`)))
	result, err := a.Analyze(context.Background(), testRecords(), Overall)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	// golang.org has no scheme, so only the repeated menu link remains.
	if result.Top.Links != 1 {
		t.Errorf("Links = %d, want 1", result.Top.Links)
	}
}

func TestUsers(t *testing.T) {
	got := Users(testRecords())
	want := []string{Overall, "Alice", "Bob", "Carol", parser.GroupNotification}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}

	if got := Users(nil); !reflect.DeepEqual(got, []string{Overall}) {
		t.Errorf("Users(nil) = %v, want [Overall]", got)
	}
}

func TestHasUser(t *testing.T) {
	records := testRecords()
	tests := []struct {
		user string
		want bool
	}{
		{Overall, true},
		{"Alice", true},
		{parser.GroupNotification, true},
		{"Mallory", false},
	}
	for _, tt := range tests {
		if got := HasUser(records, tt.user); got != tt.want {
			t.Errorf("HasUser(%q) = %v, want %v", tt.user, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	records := testRecords()

	if got := Filter(records, Overall); len(got) != len(records) {
		t.Errorf("Filter(Overall) = %d records, want %d", len(got), len(records))
	}

	got := Filter(records, "Alice")
	if len(got) != 3 {
		t.Fatalf("Filter(Alice) = %d records, want 3", len(got))
	}
	for _, r := range got {
		if r.Sender != "Alice" {
			t.Errorf("Filter(Alice) returned sender %q", r.Sender)
		}
	}

	if got := Filter(records, "Mallory"); len(got) != 0 {
		t.Errorf("Filter(Mallory) = %d records, want 0", len(got))
	}
}

func TestMostActiveUsers(t *testing.T) {
	records := []parser.MessageRecord{
		rec("Alice", "a", at(2023, 1, 1, 0, 0)),
		rec("Bob", "b", at(2023, 1, 1, 0, 1)),
		rec("Carol", "c", at(2023, 1, 1, 0, 2)),
		rec("Bob", "b", at(2023, 1, 1, 0, 3)),
		rec("Carol", "c", at(2023, 1, 1, 0, 4)),
		rec("Dave", "d", at(2023, 1, 1, 0, 5)),
	}

	top, shares := MostActiveUsers(records, 2)

	wantTop := []UserShare{
		{Name: "Bob", Count: 2, Percent: 33.33},
		{Name: "Carol", Count: 2, Percent: 33.33},
	}
	if !reflect.DeepEqual(top, wantTop) {
		t.Errorf("top = %+v, want %+v", top, wantTop)
	}

	if len(shares) != 4 {
		t.Fatalf("shares = %d, want 4", len(shares))
	}
	if shares[2].Name != "Alice" || shares[2].Percent != 16.67 {
		t.Errorf("shares[2] = %+v, want Alice/16.67", shares[2])
	}
}

func TestMostActiveUsers_Empty(t *testing.T) {
	top, shares := MostActiveUsers(nil, 5)
	if len(top) != 0 || len(shares) != 0 {
		t.Errorf("MostActiveUsers(nil) = %v, %v, want empty", top, shares)
	}
}

func TestCounter_TiesKeepFirstAppearance(t *testing.T) {
	c := newCounter()
	for _, k := range []string{"b", "a", "c", "a", "b"} {
		c.add(k)
	}

	got := c.top(0)
	want := []Count{{"b", 2}, {"a", 2}, {"c", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("top(0) = %v, want %v", got, want)
	}

	if got := c.top(1); len(got) != 1 || got[0].Key != "b" {
		t.Errorf("top(1) = %v, want [b]", got)
	}

	c.reset()
	if got := c.top(0); len(got) != 0 {
		t.Errorf("after reset top(0) = %v, want empty", got)
	}
}

func TestCollectors_Reset(t *testing.T) {
	a := NewAnalyzer(nil)
	records := testRecords()

	for _, c := range a.collectors() {
		for i := range records {
			c.Process(&records[i])
		}
		c.Reset()

		var result AnalysisResult
		c.Finalize(&result)
		if result.Top.Messages != 0 || len(result.CommonWords) != 0 || len(result.Monthly) != 0 ||
			len(result.WeekActivity) != 0 || len(result.Emojis) != 0 || len(result.Heatmap.Days) != 0 {
			t.Errorf("collector %s kept state after Reset: %+v", c.Name(), result)
		}
	}
}
