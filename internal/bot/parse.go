package bot

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"warikan/internal/core"
)

var (
	yearMonthPattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	monthPattern     = regexp.MustCompile(`(\d{1,2})月`)
	shortDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	addPrefix        = regexp.MustCompile(keywordAdd + `\s*`)
	deletePrefix     = regexp.MustCompile(keywordDelete + `\s*`)
)

// Reasons shown under the add-format help.
const (
	reasonMalformed = "入力形式が正しくありません"
	reasonPayer     = "支払者は「夫」または「妻」で指定してください"
	reasonAmount    = "金額は1以上の整数で指定してください"
	reasonMemo      = "メモを入力してください"
	reasonDate      = "日付が正しくありません"
)

// ParseError is a user input problem; Reason is shown in the chat.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// AddCommand is a parsed "建て替え追加" message.
type AddCommand struct {
	Date   time.Time
	Payer  core.Payer
	Amount int64
	Memo   string
}

// ParseAddCommand reads "[MM/DD] 夫|妻 amount memo..." following the add
// keyword. The date defaults to today; MM/DD is taken in today's year.
func ParseAddCommand(text string, today time.Time) (AddCommand, error) {
	fields := strings.Fields(stripFirst(addPrefix, text))
	if len(fields) < 3 {
		return AddCommand{}, &ParseError{Reason: reasonMalformed}
	}

	date := today
	if m := shortDatePattern.FindStringSubmatch(fields[0]); m != nil {
		if len(fields) < 4 {
			return AddCommand{}, &ParseError{Reason: reasonMalformed}
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d, ok := calendarDate(today.Year(), month, day, today.Location())
		if !ok {
			return AddCommand{}, &ParseError{Reason: reasonDate}
		}
		date = d
		fields = fields[1:]
	}

	payer, err := core.ParsePayer(fields[0])
	if err != nil {
		return AddCommand{}, &ParseError{Reason: reasonPayer}
	}

	amount, ok := parseAmount(fields[1])
	if !ok {
		return AddCommand{}, &ParseError{Reason: reasonAmount}
	}

	memo := strings.TrimSpace(strings.Join(fields[2:], " "))
	if memo == "" {
		return AddCommand{}, &ParseError{Reason: reasonMemo}
	}

	return AddCommand{Date: date, Payer: payer, Amount: amount, Memo: memo}, nil
}

// parseAmount accepts digits with optional thousands separators and a
// trailing 円.
func parseAmount(s string) (int64, bool) {
	s = strings.TrimSuffix(s, "円")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// calendarDate rejects dates that time.Date would normalise, like 2/30.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseDeleteID returns the text following the delete keyword.
func ParseDeleteID(text string) string {
	return strings.TrimSpace(stripFirst(deletePrefix, text))
}

// ExtractYearMonth finds "2024年10月", else "10月" in now's year, else
// now's month.
func ExtractYearMonth(text string, now time.Time) (core.YearMonth, error) {
	if m := yearMonthPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return core.NewYearMonth(year, month)
	}
	if m := monthPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		return core.NewYearMonth(now.Year(), month)
	}
	return core.YearMonthOf(now), nil
}

// HasMonth reports whether text names a month.
func HasMonth(text string) bool {
	return monthPattern.MatchString(text)
}

func stripFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
