package zeroex

// Token is one entry of the aggregator's tradeable-asset catalog.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Address  string `json:"address"`
}

// Price is a quoted rate against the requested unit-of-account asset.
// The rate is kept as the aggregator's decimal string, never parsed into
// a float.
type Price struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type Order struct {
	MakerAmount  string `json:"makerAmount"`
	MakerToken   string `json:"makerToken"`
	Source       string `json:"source"`
	SourcePathID string `json:"sourcePathId"`
	TakerAmount  string `json:"takerAmount"`
	TakerToken   string `json:"takerToken"`
	Type         int    `json:"type"`
}

type Source struct {
	Name       string `json:"name"`
	Proportion string `json:"proportion"`
}

// Quote is an immutable execution plan for one (sell, buy, amount) triple
// at fetch time. Amount fields are base-10 integer strings in native units.
type Quote struct {
	AllowanceTarget    string   `json:"allowanceTarget"`
	BuyAmount          string   `json:"buyAmount"`
	BuyTokenAddress    string   `json:"buyTokenAddress"`
	BuyTokenToEthRate  string   `json:"buyTokenToEthRate"`
	ChainID            int64    `json:"chainId"`
	Data               string   `json:"data"`
	EstimatedGas       string   `json:"estimatedGas"`
	Gas                string   `json:"gas"`
	GasPrice           string   `json:"gasPrice"`
	GuaranteedPrice    string   `json:"guaranteedPrice"`
	MinimumProtocolFee string   `json:"minimumProtocolFee"`
	Orders             []Order  `json:"orders"`
	Price              string   `json:"price"`
	ProtocolFee        string   `json:"protocolFee"`
	SellAmount         string   `json:"sellAmount"`
	SellTokenAddress   string   `json:"sellTokenAddress"`
	SellTokenToEthRate string   `json:"sellTokenToEthRate"`
	Sources            []Source `json:"sources"`
	To                 string   `json:"to"`
	Value              string   `json:"value"`
}
