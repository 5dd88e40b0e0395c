// Package swap tracks two-asset liquidity pools, orthogonal to staking.
package swap

import (
	"fmt"
	"math"
)

// Pair is a two-token constant-product liquidity pool.
type Pair struct {
	TokenA         string  `json:"tokenA"`
	TokenB         string  `json:"tokenB"`
	ReserveA       float64 `json:"reserveA"`
	ReserveB       float64 `json:"reserveB"`
	FeeRate        float64 `json:"feeRate"`
	TotalLiquidity float64 `json:"totalLiquidity"`
}

// DefaultFeeRate is charged on the input side of every trade.
const DefaultFeeRate = 0.003

// Registry owns all pairs, keyed by their canonical symbol pair.
type Registry struct {
	pairs map[string]*Pair
}

func NewRegistry() *Registry {
	return &Registry{pairs: make(map[string]*Pair)}
}

func pairKey(tokenA, tokenB string) string {
	if tokenB < tokenA {
		tokenA, tokenB = tokenB, tokenA
	}
	return tokenA + "/" + tokenB
}

// CreatePair registers a pool with initial reserves. Returns false if the
// pair already exists or the parameters are unusable (bookkeeping guard,
// not caller misuse).
func (r *Registry) CreatePair(tokenA, tokenB string, reserveA, reserveB float64) bool {
	if tokenA == "" || tokenB == "" || tokenA == tokenB {
		return false
	}
	if reserveA <= 0 || reserveB <= 0 {
		return false
	}
	key := pairKey(tokenA, tokenB)
	if _, exists := r.pairs[key]; exists {
		return false
	}
	r.pairs[key] = &Pair{
		TokenA:         tokenA,
		TokenB:         tokenB,
		ReserveA:       reserveA,
		ReserveB:       reserveB,
		FeeRate:        DefaultFeeRate,
		TotalLiquidity: math.Sqrt(reserveA * reserveB),
	}
	return true
}

// GetPair returns the pool for the two tokens, in either order.
func (r *Registry) GetPair(tokenA, tokenB string) *Pair {
	return r.pairs[pairKey(tokenA, tokenB)]
}

// Pairs returns every registered pool.
func (r *Registry) Pairs() []*Pair {
	out := make([]*Pair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	return out
}

// Trade swaps amountIn of tokenIn for tokenOut against the pool's
// reserves under x*y=k pricing, net of the pool fee. Returns the output
// amount credited to the trader.
func (r *Registry) Trade(tokenIn, tokenOut string, amountIn float64) (float64, error) {
	if amountIn <= 0 {
		return 0, fmt.Errorf("swap input amount must be positive, got %v", amountIn)
	}
	p := r.GetPair(tokenIn, tokenOut)
	if p == nil {
		return 0, fmt.Errorf("no swap pair exists for %s/%s", tokenIn, tokenOut)
	}
	reserveIn, reserveOut := &p.ReserveA, &p.ReserveB
	if tokenIn == p.TokenB {
		reserveIn, reserveOut = &p.ReserveB, &p.ReserveA
	} else if tokenIn != p.TokenA {
		return 0, fmt.Errorf("token %s is not part of pair %s/%s", tokenIn, p.TokenA, p.TokenB)
	}

	effectiveIn := amountIn * (1 - p.FeeRate)
	amountOut := (*reserveOut * effectiveIn) / (*reserveIn + effectiveIn)
	if amountOut <= 0 || amountOut >= *reserveOut {
		return 0, fmt.Errorf("swap would drain the %s reserve", tokenOut)
	}
	*reserveIn += amountIn
	*reserveOut -= amountOut
	return amountOut, nil
}
