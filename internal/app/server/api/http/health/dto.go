package health

type Input struct{}

type Output struct {
	Body Response
}

// Response - ответ health-эндпоинта
type Response struct {
	Status  string `json:"status" example:"OK" doc:"Health status of the service"`
	Service string `json:"service" example:"marketsync" doc:"Service name"`
	Version string `json:"version" example:"1.0.0" doc:"Service version"`
}
