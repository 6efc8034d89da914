// internal/blockchain/solbc/error_analyzer.go
package solbc

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// IsRateLimited сообщает, что узел отклонил запрос из-за лимитов.
func IsRateLimited(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == http.StatusTooManyRequests ||
			strings.Contains(strings.ToLower(rpcErr.Message), "rate limit")
	}
	return err != nil && strings.Contains(err.Error(), "429")
}

// rpcErrorFields раскладывает ошибку RPC на поля лога
func rpcErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		fields = append(fields,
			zap.Int("rpc_code", rpcErr.Code),
			zap.String("rpc_message", rpcErr.Message))
	}
	if IsRateLimited(err) {
		fields = append(fields, zap.Bool("rate_limited", true))
	}
	return fields
}
