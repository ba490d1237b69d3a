package models

// Requests for dashboard HTTP endpoints. Bounds mirror the dashboard controls.

type SessionRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

type ForecastRequest struct {
	ID    string `param:"id" validate:"required,uuid"`
	Model string `query:"model" json:"model" default:"ARIMAX" validate:"forecast_model"`
}

type TableRequest struct {
	ID     string `param:"id" validate:"required,uuid"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=5000"`
	Offset int    `query:"offset" json:"offset" validate:"gte=0"`
}

type TrainRequest struct {
	ID          string `param:"id" validate:"required,uuid"`
	Epochs      int    `json:"epochs" default:"20" validate:"gte=5,lte=100"`
	HiddenUnits int    `json:"hidden_units" default:"50" validate:"gte=10,lte=100"`
	LookBack    int    `json:"look_back" default:"7" validate:"gte=1,lte=30"`
	Seed        *int64 `json:"seed,omitempty"`
}
