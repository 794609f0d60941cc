package metrics

type Config struct {
	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string
	Job            string
}
