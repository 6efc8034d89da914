// internal/blockchain/solbc/rpc/pool.go
package rpc

import (
	"context"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// NewPool создает пул из списка RPC URL.
func NewPool(urls []string, logger *zap.Logger) (*Pool, error) {
	nodes := make([]*NodeClient, 0, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		nodes = append(nodes, &NodeClient{API: solanarpc.New(url), URL: url})
	}
	return NewPoolFromNodes(nodes, logger)
}

// NewPoolFromNodes создает пул из готовых узлов.
func NewPoolFromNodes(nodes []*NodeClient, logger *zap.Logger) (*Pool, error) {
	if len(nodes) == 0 {
		return nil, ErrNoRPCNodes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		nodes:  nodes,
		logger: logger.Named("rpc-pool"),
	}, nil
}

// Size возвращает количество узлов в пуле.
func (p *Pool) Size() int {
	return len(p.nodes)
}

// Nodes возвращает узлы пула.
func (p *Pool) Nodes() []*NodeClient {
	return p.nodes
}

// nextNode возвращает следующий узел по кругу
func (p *Pool) nextNode() *NodeClient {
	p.mu.Lock()
	defer p.mu.Unlock()

	node := p.nodes[p.next%uint64(len(p.nodes))]
	p.next++
	return node
}

// Do выполняет операцию ровно один раз на следующем узле.
// Повторов нет: ошибка узла возвращается вызывающему, обернутая в *Error.
func (p *Pool) Do(ctx context.Context, method string, operation func(API) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	node := p.nextNode()
	start := time.Now()
	err := operation(node.API)
	node.UpdateMetrics(err == nil, time.Since(start))

	if err != nil {
		p.logger.Debug("RPC request failed",
			zap.String("method", method),
			zap.String("url", node.URL),
			zap.Error(err))
		return NewError(err, node.URL, method)
	}
	return nil
}

// UpdateMetrics обновляет метрики узла
func (c *NodeClient) UpdateMetrics(success bool, latency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	if success {
		c.metrics.successCount++
	} else {
		c.metrics.errorCount++
	}

	c.metrics.latency = (c.metrics.latency + latency) / 2 // Скользящее среднее
}

// GetMetrics возвращает текущие метрики узла
func (c *NodeClient) GetMetrics() (successCount uint64, errorCount uint64, avgLatency time.Duration) {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()
	return c.metrics.successCount, c.metrics.errorCount, c.metrics.latency
}
