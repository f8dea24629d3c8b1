package zeroex

// Structural validators for aggregator payloads. Every externally sourced
// payload must pass one of these before it is trusted; a failure means
// "no usable data", never a crash. Wire structs use pointer fields so a
// missing key is distinguishable from a zero value.

type wireToken struct {
	Symbol   *string `json:"symbol"`
	Name     *string `json:"name"`
	Decimals *int    `json:"decimals"`
	Address  *string `json:"address"`
}

type wireTokensResponse struct {
	Records []wireToken `json:"records"`
}

func (r wireTokensResponse) validate() ([]Token, bool) {
	out := make([]Token, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Symbol == nil || rec.Name == nil || rec.Decimals == nil || rec.Address == nil {
			return nil, false
		}
		if *rec.Decimals < 0 {
			return nil, false
		}
		out = append(out, Token{
			Symbol:   *rec.Symbol,
			Name:     *rec.Name,
			Decimals: *rec.Decimals,
			Address:  *rec.Address,
		})
	}
	return out, true
}

type wirePrice struct {
	Symbol *string `json:"symbol"`
	Price  *string `json:"price"`
}

type wirePricesResponse struct {
	Records []wirePrice `json:"records"`
}

func (r wirePricesResponse) validate() ([]Price, bool) {
	out := make([]Price, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Symbol == nil || rec.Price == nil {
			return nil, false
		}
		out = append(out, Price{Symbol: *rec.Symbol, Price: *rec.Price})
	}
	return out, true
}

type wireQuote struct {
	AllowanceTarget    *string  `json:"allowanceTarget"`
	BuyAmount          *string  `json:"buyAmount"`
	BuyTokenAddress    *string  `json:"buyTokenAddress"`
	BuyTokenToEthRate  *string  `json:"buyTokenToEthRate"`
	ChainID            *int64   `json:"chainId"`
	Data               *string  `json:"data"`
	EstimatedGas       *string  `json:"estimatedGas"`
	Gas                *string  `json:"gas"`
	GasPrice           *string  `json:"gasPrice"`
	GuaranteedPrice    *string  `json:"guaranteedPrice"`
	MinimumProtocolFee *string  `json:"minimumProtocolFee"`
	Orders             []Order  `json:"orders"`
	Price              *string  `json:"price"`
	ProtocolFee        *string  `json:"protocolFee"`
	SellAmount         *string  `json:"sellAmount"`
	SellTokenAddress   *string  `json:"sellTokenAddress"`
	SellTokenToEthRate *string  `json:"sellTokenToEthRate"`
	Sources            []Source `json:"sources"`
	To                 *string  `json:"to"`
	Value              *string  `json:"value"`
}

func (r wireQuote) validate() (*Quote, bool) {
	required := []*string{
		r.AllowanceTarget, r.BuyAmount, r.BuyTokenAddress, r.Data,
		r.Gas, r.GasPrice, r.Price, r.SellAmount, r.SellTokenAddress,
		r.To, r.Value,
	}
	for _, field := range required {
		if field == nil {
			return nil, false
		}
	}
	if r.ChainID == nil {
		return nil, false
	}

	q := &Quote{
		AllowanceTarget:  *r.AllowanceTarget,
		BuyAmount:        *r.BuyAmount,
		BuyTokenAddress:  *r.BuyTokenAddress,
		ChainID:          *r.ChainID,
		Data:             *r.Data,
		Gas:              *r.Gas,
		GasPrice:         *r.GasPrice,
		Orders:           r.Orders,
		Price:            *r.Price,
		SellAmount:       *r.SellAmount,
		SellTokenAddress: *r.SellTokenAddress,
		Sources:          r.Sources,
		To:               *r.To,
		Value:            *r.Value,
	}
	if r.BuyTokenToEthRate != nil {
		q.BuyTokenToEthRate = *r.BuyTokenToEthRate
	}
	if r.EstimatedGas != nil {
		q.EstimatedGas = *r.EstimatedGas
	}
	if r.GuaranteedPrice != nil {
		q.GuaranteedPrice = *r.GuaranteedPrice
	}
	if r.MinimumProtocolFee != nil {
		q.MinimumProtocolFee = *r.MinimumProtocolFee
	}
	if r.ProtocolFee != nil {
		q.ProtocolFee = *r.ProtocolFee
	}
	if r.SellTokenToEthRate != nil {
		q.SellTokenToEthRate = *r.SellTokenToEthRate
	}
	return q, true
}
