package dto

// BatchRefRequest referencia un lote: distribution_id representativo, o la
// clave compuesta completa (destination_tenant_id + initiator_id + date).
type BatchRefRequest struct {
	DistributionID      string `json:"distribution_id"`
	DestinationTenantID string `json:"destination_tenant_id"`
	InitiatorID         string `json:"initiator_id"`
	Date                string `json:"date"` // YYYY-MM-DD
	Reason              string `json:"reason"`
}

// BatchResultResponse resultado de aceptar o rechazar un lote.
type BatchResultResponse struct {
	BatchID string `json:"batch_id"`
	Count   int    `json:"count"`
}
