// Package queue defines message payloads exchanged over the message broker.
package queue

// AccessRecordedEvent is published for every door scan, authorized or not.
// It carries enough for downstream consumers (audit journal, occupancy
// dashboards) without querying the primary database.
type AccessRecordedEvent struct {
	DNI        string `json:"dni"`
	Name       string `json:"nombre"`
	Role       string `json:"rol"`
	Authorized bool   `json:"autorizado"`
	Result     string `json:"resultado"`
	At         string `json:"fecha"`
}

// PaymentProcessedEvent is published after a charge commits: a plan renewal
// or a merchandise sale.
type PaymentProcessedEvent struct {
	MovementID uint64  `json:"movimiento_id"`
	Kind       string  `json:"tipo"`
	Amount     float64 `json:"monto"`
	Method     string  `json:"metodo_pago"`
	UserID     uint64  `json:"usuario_id,omitempty"`
	ItemID     uint64  `json:"item_id"`
	Quantity   int     `json:"cantidad,omitempty"`
	At         string  `json:"fecha"`
}
