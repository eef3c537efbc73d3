package models

import (
	"net/url"
	"strconv"
)

// FetchOrdersParams are the filters of one order-book query
type FetchOrdersParams struct {
	ChainID     int
	OrderType   OrderType
	OrderStatus OrderStatus
	// Extra filters are forwarded verbatim to the order book
	Extra map[string]string
}

// Query renders the params as order-book query values
func (p FetchOrdersParams) Query() url.Values {
	values := url.Values{}
	for key, value := range p.Extra {
		values.Set(key, value)
	}

	if p.ChainID != 0 {
		values.Set("chainId", strconv.Itoa(p.ChainID))
	}
	if p.OrderType != "" {
		values.Set("orderType", string(p.OrderType))
	}
	if p.OrderStatus != "" {
		values.Set("orderStatus", string(p.OrderStatus))
	}
	return values
}
