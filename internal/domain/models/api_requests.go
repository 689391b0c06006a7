package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type ChannelRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"1500" validate:"gte=20,lte=20000"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
}

type RSIRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"365" validate:"gte=15,lte=20000"`
	Period int    `query:"period" json:"period" default:"14" validate:"gte=2,lte=100"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
}

type DivergencesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	N        int    `query:"n" json:"n" default:"365" validate:"gte=15,lte=20000"`
	Lookback int    `query:"lookback" json:"lookback" default:"5" validate:"gte=2,lte=50"`
}

type ConsolidationsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"365" validate:"gte=21,lte=20000"`
}

type RiskHistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"1500" validate:"gte=20,lte=20000"`
}

type CurrentRiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type RiskFactorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"1500" validate:"gte=20,lte=20000"`
}

type RegimeNowRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type RegimeTrajectoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=3650"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1m 1h 1d"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
