package attendance

// CurrentState: 最新の打刻の種別がそのまま現在の状態。打刻が無ければ退勤扱い
func CurrentState(latest *Event) State {
	if latest == nil {
		return CheckedOut
	}
	if latest.Kind == CheckIn {
		return CheckedIn
	}
	return CheckedOut
}
