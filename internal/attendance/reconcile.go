package attendance

import "time"

// Reconciliation: Reconcile の結果。
// OpenCheckIn は対応する out がまだ無い in（勤務中）。
type Reconciliation struct {
	Periods     []WorkPeriod
	OpenCheckIn *time.Time
	Anomalies   Anomalies
}

// Anomalies: 組にできなかった打刻の件数。ペアリングには影響しない
type Anomalies struct {
	DuplicateCheckIns int
	OrphanCheckOuts   int
	NegativePairs     int
}

func (a Anomalies) Any() bool {
	return a.DuplicateCheckIns+a.OrphanCheckOuts+a.NegativePairs > 0
}

// Reconcile は1従業員分の打刻列（時刻昇順）を左から1回走査して勤務区間にする。
// 並べ替えはしない。昇順は QueryEvents の ORDER BY で保証される。
//
//   - in（保留なし）: 保留にする
//   - in（保留あり）: 捨てる（最初の in を残す）
//   - out（保留あり）: out-in >= 0 なら区間にする。負なら捨てる。どちらでも保留は解除
//   - out（保留なし）: 捨てる
func Reconcile(events []Event) Reconciliation {
	res := Reconciliation{Periods: []WorkPeriod{}}

	var pending *Event
	for i := range events {
		ev := &events[i]
		switch ev.Kind {
		case CheckIn:
			if pending != nil {
				res.Anomalies.DuplicateCheckIns++
				continue
			}
			pending = ev
		case CheckOut:
			if pending == nil {
				res.Anomalies.OrphanCheckOuts++
				continue
			}
			d := ev.At.Sub(pending.At)
			if d >= 0 {
				res.Periods = append(res.Periods, WorkPeriod{
					EmployeeID:      pending.EmployeeID,
					Start:           pending.At,
					End:             ev.At,
					DurationSeconds: int64(d / time.Second),
				})
			} else {
				res.Anomalies.NegativePairs++
			}
			pending = nil
		}
	}

	if pending != nil {
		at := pending.At
		res.OpenCheckIn = &at
	}
	return res
}
