package io

import (
	"sync"
)

// Run feeds the units of producer to workers consumers built by newConsumer and
// returns one result per unit. Results are placed at their unit index, so the
// returned slice has total entries in unit order whatever the completion order.
func Run(producer Producer, newConsumer func() Consumer, workers, total int) []*WorkResult {
	if workers < 1 {
		workers = 1
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *WorkUnit, workers*5)
	resultChannel := make(chan *WorkResult)

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	go producer.Produce(workChannel, &waitGroup)

	// add consumers to waitgroup and launch them
	for i := 0; i < workers; i++ {
		waitGroup.Add(1)
		go newConsumer().Consume(workChannel, resultChannel, &waitGroup)
	}

	// close the result channel once producer and consumers are done
	go func() {
		waitGroup.Wait()
		close(resultChannel)
	}()

	results := make([]*WorkResult, total)
	for result := range resultChannel {
		if result.Index >= 0 && result.Index < total {
			results[result.Index] = result
		}
	}
	return results
}
