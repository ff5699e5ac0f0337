package snapshot

import (
	"time"

	"github.com/xraph/airfair"
)

// Snapshot is a point-in-time view of one scheduler instance.
type Snapshot struct {
	// Category is the scheduler's access-category label.
	Category string `json:"category" msgpack:"category"`

	// TakenAt is the wall-clock capture time.
	TakenAt time.Time `json:"taken_at" msgpack:"taken_at"`

	// GlobalVirtualTime is the category's virtual clock at capture.
	GlobalVirtualTime uint64 `json:"global_virtual_time" msgpack:"global_virtual_time"`

	// WeightSum is the aggregate weight of recently active entities.
	WeightSum uint64 `json:"weight_sum" msgpack:"weight_sum"`

	// Entities lists every registered entity in registration order.
	Entities []Entity `json:"entities" msgpack:"entities"`
}

// Entity is the captured state of one fairness entity.
type Entity struct {
	Station      string `json:"station" msgpack:"station"`
	TrafficClass uint8  `json:"traffic_class" msgpack:"traffic_class"`
	Weight       uint32 `json:"weight" msgpack:"weight"`
	VirtualTime  uint64 `json:"virtual_time" msgpack:"virtual_time"`

	// TxAirtime and RxAirtime are the confirmed totals charged so far.
	TxAirtime time.Duration `json:"tx_airtime" msgpack:"tx_airtime"`
	RxAirtime time.Duration `json:"rx_airtime" msgpack:"rx_airtime"`

	// PendingAirtime is the estimated in-flight airtime at capture.
	PendingAirtime time.Duration `json:"pending_airtime" msgpack:"pending_airtime"`

	Scheduled bool `json:"scheduled" msgpack:"scheduled"`
	Queues    int  `json:"queues" msgpack:"queues"`
}

// Capture reads a scheduler's current fairness state. Each entity is read
// atomically, but the snapshot as a whole is not: entities keep moving
// while it is assembled.
func Capture(s *airfair.Scheduler) *Snapshot {
	entities := s.Entities()
	snap := &Snapshot{
		Category:          s.Name(),
		TakenAt:           time.Now(),
		GlobalVirtualTime: s.GlobalVirtualTime(),
		WeightSum:         s.WeightSum(),
		Entities:          make([]Entity, 0, len(entities)),
	}
	for _, e := range entities {
		tx, rx := e.AccountedAirtime()
		snap.Entities = append(snap.Entities, Entity{
			Station:        e.Station().String(),
			TrafficClass:   e.TrafficClass(),
			Weight:         e.Weight(),
			VirtualTime:    e.VirtualTime(),
			TxAirtime:      tx,
			RxAirtime:      rx,
			PendingAirtime: e.PendingAirtime(),
			Scheduled:      e.Scheduled(),
			Queues:         e.QueueCount(),
		})
	}
	return snap
}
