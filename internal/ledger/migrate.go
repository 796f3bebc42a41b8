package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cardcricket/internal/fileutil"
)

// headerAliases maps drifted column names from older ledgers onto the
// canonical column set.
var headerAliases = map[string]string{
	"player_card_id":   "player_card_id",
	"player_card":      "player_card_id",
	"player_id":        "player_card_id",
	"playercardid":     "player_card_id",
	"computer_card_id": "computer_card_id",
	"computer_card":    "computer_card_id",
	"computer_id":      "computer_card_id",
	"ai_card_id":       "computer_card_id",
	"outcome":          "outcome",
	"result":           "outcome",
	"batting_team":     "batting_team",
	"batting":          "batting_team",
	"batting_side":     "batting_team",
	"innings":          "innings",
	"inning":           "innings",
	"round_number":     "round_number",
	"round":            "round_number",
	"wickets":          "wickets_after",
	"wickets_after":    "wickets_after",
	"score":            "score_after",
	"score_after":      "score_after",
	"runs":             "score_after",
	"timestamp":        "timestamp",
	"time":             "timestamp",
	"match_id":         "match_id",
	"strategy":         "strategy",
}

var requiredColumns = []string{"player_card_id", "computer_card_id", "outcome", "batting_team"}

// MigrationReport summarises one CSV migration.
type MigrationReport struct {
	Source     string
	Target     string
	ArchivedAs string
	Migrated   int
	Skipped    int
}

// MigrateCSV converts a legacy CSV ledger at src into JSON lines appended
// to the ledger at dst, then renames src out of the way so the migration
// runs once. A missing src is not an error. It must run before dst is
// opened with OpenFile because dst is replaced atomically.
func MigrateCSV(src, dst string, logger *log.Logger) (MigrationReport, error) {
	logger = logger.WithPrefix("ledger-migrate")
	report := MigrationReport{Source: src, Target: dst}

	f, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("open legacy ledger: %w", err)
	}
	records, skipped, err := parseLegacyCSV(f)
	f.Close()
	if err != nil {
		return report, fmt.Errorf("legacy ledger %s: %w", src, err)
	}
	report.Skipped = skipped

	existing, err := os.ReadFile(dst)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return report, fmt.Errorf("read ledger %s: %w", dst, err)
	}
	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, rec := range records {
		line, err := encodeLine(rec)
		if err != nil {
			return report, err
		}
		buf.Write(line)
	}

	if err := fileutil.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
		return report, fmt.Errorf("write migrated ledger: %w", err)
	}
	archived, err := fileutil.RenameAside(src, ".migrated")
	if err != nil {
		return report, fmt.Errorf("archive legacy ledger: %w", err)
	}
	report.ArchivedAs = archived
	report.Migrated = len(records)

	if skipped > 0 {
		logger.Warn("Skipped malformed legacy rows", "source", src, "skipped", skipped)
	}
	logger.Info("Legacy ledger migrated", "source", src, "target", dst, "records", len(records), "archived", archived)
	return report, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

func parseLegacyCSV(r io.Reader) ([]Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int)
	for i, name := range header {
		canonical, ok := headerAliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		if _, seen := columns[canonical]; !seen {
			columns[canonical] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		records []Record
		skipped int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rec, ok := legacyRecord(row, columns)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func legacyRecord(row []string, columns map[string]int) (Record, bool) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	intField := func(name string, def int) (int, bool) {
		v := field(name)
		if v == "" {
			return def, true
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	var rec Record
	var ok bool
	if rec.PlayerCardID, ok = intField("player_card_id", -1); !ok || rec.PlayerCardID < 0 {
		return Record{}, false
	}
	if rec.ComputerCardID, ok = intField("computer_card_id", -1); !ok || rec.ComputerCardID < 0 {
		return Record{}, false
	}
	if rec.Outcome, ok = legacyOutcome(field("outcome")); !ok {
		return Record{}, false
	}
	if rec.BattingTeam, ok = legacyTeam(field("batting_team")); !ok {
		return Record{}, false
	}
	if rec.Innings, ok = intField("innings", 1); !ok {
		return Record{}, false
	}
	if rec.Round, ok = intField("round_number", 0); !ok {
		return Record{}, false
	}
	if rec.ScoreAfter, ok = intField("score_after", 0); !ok {
		return Record{}, false
	}
	if rec.WicketsAfter, ok = intField("wickets_after", 0); !ok {
		return Record{}, false
	}
	if ts := field("timestamp"); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Record{}, false
		}
		rec.Timestamp = t
	}
	rec.MatchID = field("match_id")
	rec.Strategy = field("strategy")
	return rec, true
}

// legacyOutcome maps outcome spellings. Old ledgers wrote "win" when the
// batting side scored.
func legacyOutcome(v string) (string, bool) {
	switch strings.ToLower(v) {
	case "hit", "win", "runs":
		return OutcomeHit, true
	case "wicket", "loss", "out":
		return OutcomeWicket, true
	}
	return "", false
}

func legacyTeam(v string) (string, bool) {
	switch strings.ToLower(v) {
	case "player", "human":
		return TeamPlayer, true
	case "computer", "ai", "bot":
		return TeamComputer, true
	}
	return "", false
}
