package model

// BrokerSeed describes one broker of the seed configuration: the share of a
// combined monthly deposit it receives and the assets its portfolio starts with.
type BrokerSeed struct {
	Broker              string  `json:"broker"`
	DisplayName         string  `json:"displayName"`
	PortfolioName       string  `json:"portfolioName"`
	Percentage          float64 `json:"percentage"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	Assets              []Asset `json:"assets"`
}

// SeedConfig is the static broker configuration. It is passed by value to the
// services that need it and never mutated at runtime.
type SeedConfig struct {
	Brokers []BrokerSeed `json:"brokers"`
}

// Broker looks up the seed entry for a broker key.
func (c SeedConfig) Broker(broker string) (BrokerSeed, bool) {
	for _, b := range c.Brokers {
		if b.Broker == broker {
			return b, true
		}
	}
	return BrokerSeed{}, false
}
