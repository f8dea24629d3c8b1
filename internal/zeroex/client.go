package zeroex

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/httpx"
)

const defaultBase = "https://api.0x.org"

// Client talks to the 0x swap aggregator API. Responses that fail
// structural validation degrade to empty results: the failure is logged
// and the caller sees "no data", not an error.
type Client struct {
	http    *httpx.Client
	baseURL string
	log     *zap.Logger
}

func New(httpClient *httpx.Client, baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBase
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: httpClient, baseURL: baseURL, log: log}
}

// FetchTokens returns the aggregator's asset catalog, or an empty slice
// when the response does not validate.
func (c *Client) FetchTokens(ctx context.Context) ([]Token, error) {
	var resp wireTokensResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/swap/v1/tokens", &resp); err != nil {
		return nil, err
	}
	tokens, ok := resp.validate()
	if !ok {
		c.log.Warn("token catalog response failed validation, did the aggregator API change?")
		return []Token{}, nil
	}
	return tokens, nil
}

// FetchPrices returns prices quoted against base as the unit of account,
// or an empty slice when the response does not validate.
func (c *Client) FetchPrices(ctx context.Context, base asset.Asset) ([]Price, error) {
	vals := url.Values{}
	vals.Set("sellToken", base.Symbol)
	vals.Set("perPage", "1000")

	var resp wirePricesResponse
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/swap/v1/prices?%s", c.baseURL, vals.Encode()), &resp); err != nil {
		return nil, err
	}
	prices, ok := resp.validate()
	if !ok {
		c.log.Warn("price list response failed validation, did the aggregator API change?",
			zap.String("sell_token", base.Symbol))
		return []Price{}, nil
	}
	return prices, nil
}

// FetchQuote scales sellAmountHuman into the sell asset's native units and
// requests an executable quote for the pair. A malformed amount is a fatal
// error for this call; a response that fails validation returns a nil
// quote and a nil error.
func (c *Client) FetchQuote(ctx context.Context, sell, buy asset.Asset, sellAmountHuman string) (*Quote, error) {
	sellAmount, err := asset.ParseUnits(sellAmountHuman, sell.Decimals)
	if err != nil {
		return nil, err
	}

	vals := url.Values{}
	vals.Set("sellToken", sell.Symbol)
	vals.Set("buyToken", buy.Symbol)
	vals.Set("sellAmount", sellAmount.String())

	var resp wireQuote
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/swap/v1/quote?%s", c.baseURL, vals.Encode()), &resp); err != nil {
		return nil, err
	}
	quote, ok := resp.validate()
	if !ok {
		c.log.Warn("quote response failed validation, did the aggregator API change?",
			zap.String("sell_token", sell.Symbol),
			zap.String("buy_token", buy.Symbol))
		return nil, nil
	}
	return quote, nil
}
