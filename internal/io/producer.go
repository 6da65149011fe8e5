package io

import (
	"sync"
)

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup)
}

type Consumer interface {
	Consume(workchan chan *WorkUnit, resultchan chan *WorkResult, wg *sync.WaitGroup)
}
