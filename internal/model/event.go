package model

// Event is a committed engine event with its journal sequence.
type Event struct {
	Seq    uint64      `json:"seq"`
	Name   string      `json:"name"`
	PoolID uint64      `json:"pool_id"`
	Data   interface{} `json:"data"`
}
