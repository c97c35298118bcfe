package model

// Heartbeat is a protocol ping surfaced to the pipeline as a liveness marker,
// independent of bar delivery.
type Heartbeat struct {
	Exchange string `json:"exchange"`
	TimeMs   int64  `json:"time_ms"`
}

// MsgKind tags the pipeline message union.
type MsgKind uint8

const (
	MsgKline MsgKind = iota + 1
	MsgHeartbeat
	MsgError
)

// Msg is the unit passed through pipeline queues. Exactly one payload field is
// meaningful, selected by Kind. Index is the instrument slot for MsgKline.
type Msg struct {
	Kind      MsgKind
	Index     int
	Kline     Kline
	Heartbeat Heartbeat
	Err       error
}

// KlineMsg wraps an indexed bar.
func KlineMsg(index int, k Kline) Msg {
	return Msg{Kind: MsgKline, Index: index, Kline: k}
}

// HeartbeatMsg wraps a surfaced protocol ping.
func HeartbeatMsg(hb Heartbeat) Msg {
	return Msg{Kind: MsgHeartbeat, Heartbeat: hb}
}

// ErrorMsg wraps a transport error for downstream reporting.
func ErrorMsg(err error) Msg {
	return Msg{Kind: MsgError, Err: err}
}
