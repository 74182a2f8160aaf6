package order

import "sync"

// KeyedLocks 按订单 ID 的互斥锁表。
// 支付与取消共用同一把锁：同一笔订单同一时刻只有一个写者在检查/流转状态，
// 保证至多一次 paid 流转，也保证取消不会插进还在途的网关调用中间。
// 锁对象按需创建后留在表里（量级与订单数同阶，可接受）。
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁住指定订单，返回解锁函数。
func (k *KeyedLocks) Lock(id string) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
