package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const calendarDateLayout = "2006-01-02"

// CalendarDate 精确到天的日期，存于 DATE 列，以 "YYYY-MM-DD" 交换。
type CalendarDate time.Time

// NewCalendarDate 将 t 截断为 UTC 日历日。
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf 将任意时刻转换为 UTC 日历日。
func DateOf(t time.Time) CalendarDate {
	u := t.UTC()
	return NewCalendarDate(u.Year(), u.Month(), u.Day())
}

// Time 返回该日期的 UTC 零点。
func (d CalendarDate) Time() time.Time {
	return time.Time(d)
}

// IsZero 判断日期是否未设置。
func (d CalendarDate) IsZero() bool {
	return time.Time(d).IsZero()
}

// Before 判断 d 是否严格早于 other。
func (d CalendarDate) Before(other CalendarDate) bool {
	return time.Time(d).Before(time.Time(other))
}

// After 判断 d 是否严格晚于 other。
func (d CalendarDate) After(other CalendarDate) bool {
	return time.Time(d).After(time.Time(other))
}

func (d CalendarDate) String() string {
	return time.Time(d).Format(calendarDateLayout)
}

// MarshalJSON 编码为 "YYYY-MM-DD"。
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON 接受 "YYYY-MM-DD" 以及完整的 RFC 3339 时间戳。
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = CalendarDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	parsed, err := parseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan 实现 sql.Scanner。
func (d *CalendarDate) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := parseCalendarDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := parseCalendarDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("scan calendar date: unsupported type %T", value)
	}
}

// Value 实现 driver.Valuer。
func (d CalendarDate) Value() (driver.Value, error) {
	return time.Time(d), nil
}

// GormDataType 让 gorm 使用 DATE 列。
func (CalendarDate) GormDataType() string {
	return "date"
}

// acceptedDateLayouts 必须匹配整个输入。时间戳格式覆盖 RFC 3339 客户端
// 以及文本驱动对 DATE 列的返回值。
var acceptedDateLayouts = []string{
	calendarDateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseCalendarDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}
