package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Func - сигнатура одной huma-мидлвари
type Func = func(ctx huma.Context, next func(huma.Context))

// Stack собирает цепочку мидлварей для одного ресурса в порядке вызова
func Stack(mws ...Func) huma.Middlewares {
	chain := make(huma.Middlewares, 0, len(mws))
	for _, mw := range mws {
		chain = append(chain, mw)
	}
	return chain
}
