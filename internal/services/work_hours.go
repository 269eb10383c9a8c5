package services

import (
	"math"
	"sort"
	"time"

	"github.com/qr_attendance/internal/models"
)

// WorkPeriod 是一对配对成功的进出记录
type WorkPeriod struct {
	Entry time.Time `json:"entry"`
	Exit  time.Time `json:"exit"`
}

// Duration 返回时长
func (p WorkPeriod) Duration() time.Duration {
	return p.Exit.Sub(p.Entry)
}

// WorkSummary 是一组打卡记录推导出的工时
type WorkSummary struct {
	Periods    []WorkPeriod  `json:"periods"`
	Total      time.Duration `json:"-"`
	TotalHours float64       `json:"totalHours"` // 保留一位小数
	DaysWorked int           `json:"daysWorked"`
}

// ComputeWorkHours 将进、出记录分别按时间排序后贪心配对：
// 出记录只有严格晚于当前未配对的进记录才会被消费，否则跳过该出记录。
// 无法配对的记录不计入。工作天数为配对出记录的不同日期 (UTC)。
func ComputeWorkHours(events []models.TimeTrackingEvent) WorkSummary {
	var entries, exits []time.Time
	for _, e := range events {
		switch e.Action {
		case models.ActionEntry:
			entries = append(entries, e.Timestamp)
		case models.ActionExit:
			exits = append(exits, e.Timestamp)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Before(entries[j]) })
	sort.Slice(exits, func(i, j int) bool { return exits[i].Before(exits[j]) })

	summary := WorkSummary{Periods: []WorkPeriod{}}
	days := make(map[string]struct{})
	i, j := 0, 0
	for i < len(entries) && j < len(exits) {
		if exits[j].After(entries[i]) {
			period := WorkPeriod{Entry: entries[i], Exit: exits[j]}
			summary.Periods = append(summary.Periods, period)
			summary.Total += period.Duration()
			days[exits[j].UTC().Format("2006-01-02")] = struct{}{}
			i++
			j++
		} else {
			j++
		}
	}
	summary.TotalHours = roundTenth(summary.Total.Hours())
	summary.DaysWorked = len(days)
	return summary
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
