package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"

	"wcferry/registry"
)

const defaultReplicas = 100

// ConsistentHashBalancer pins a key to one endpoint on a hash ring, so the
// same account keeps landing on the same worker while membership is stable
// and only moves when its worker leaves.
//
//	Hash Ring:
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A
//	           │    key ◆──►   │   (clockwise to nearest node → A)
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
type ConsistentHashBalancer struct {
	key      string
	replicas int
}

func NewConsistentHashBalancer(key string) *ConsistentHashBalancer {
	return &ConsistentHashBalancer{key: key, replicas: defaultReplicas}
}

// Pick builds the ring from eps and returns the owner of the balancer's key.
// Each endpoint gets replicas virtual nodes hashed from "{addr}#{i}".
func (b *ConsistentHashBalancer) Pick(eps []registry.Endpoint) (registry.Endpoint, error) {
	if len(eps) == 0 {
		return registry.Endpoint{}, ErrNoEndpoints
	}

	ring := make([]uint32, 0, len(eps)*b.replicas)
	nodes := make(map[uint32]int, len(eps)*b.replicas)
	for i, ep := range eps {
		for r := 0; r < b.replicas; r++ {
			h := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s#%d", ep.ControlAddr, r)))
			// On collision the lower address wins so the ring does not
			// depend on list order.
			if prev, ok := nodes[h]; ok {
				if eps[prev].ControlAddr <= ep.ControlAddr {
					continue
				}
			} else {
				ring = append(ring, h)
			}
			nodes[h] = i
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i] < ring[j] })

	hash := crc32.ChecksumIEEE([]byte(b.key))
	idx := sort.Search(len(ring), func(i int) bool { return ring[i] >= hash })
	if idx == len(ring) {
		idx = 0
	}
	return eps[nodes[ring[idx]]], nil
}

func (b *ConsistentHashBalancer) Name() string {
	return StrategyHash
}
