package io

import (
	"sync"
)

type StandardProducer struct {
	units []*WorkUnit
}

func NewStandardProducer(units []*WorkUnit) *StandardProducer {
	return &StandardProducer{
		units: units,
	}
}

// Submits every WorkUnit to the provided workchannel in order.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup) {
	for _, unit := range p.units {
		work <- unit
	}
	close(work)
	wg.Done()
}
