package expectation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stamp is a comparable processor that records its name on the message.
type stamp string

func (s stamp) Process(msg *Message) error {
	msg.Body = []byte(s)
	return nil
}

func TestResponseCycler_SequentialOrder(t *testing.T) {
	cycler := NewResponseCycler([]Processor{stamp("r0"), stamp("r1"), stamp("r2")})

	var got []string
	for i := 0; i < 5; i++ {
		msg := &Message{}
		require.NoError(t, cycler.Process(msg))
		got = append(got, string(msg.Body))
	}

	assert.Equal(t, []string{"r0", "r1", "r2", "r0", "r1"}, got)
}

func TestResponseCycler_ConcurrentMultiset(t *testing.T) {
	cycler := NewResponseCycler([]Processor{stamp("r0"), stamp("r1"), stamp("r2")})

	const calls = 5
	results := make(chan Processor, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- cycler.Next()
		}()
	}
	wg.Wait()
	close(results)

	counts := map[Processor]int{}
	for p := range results {
		counts[p]++
	}

	assert.Equal(t, map[Processor]int{stamp("r0"): 2, stamp("r1"): 2, stamp("r2"): 1}, counts)
}

func TestResponseCycler_ConcurrentLargeRun(t *testing.T) {
	cycler := NewResponseCycler([]Processor{stamp("a"), stamp("b"), stamp("c"), stamp("d")})

	const workers = 16
	const perWorker = 250
	var mu sync.Mutex
	counts := map[Processor]int{}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := map[Processor]int{}
			for i := 0; i < perWorker; i++ {
				local[cycler.Next()]++
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, workers*perWorker/4, counts[stamp(name)], "response %s", name)
	}
}

func TestResponseCycler_Empty(t *testing.T) {
	cycler := NewResponseCycler(nil)

	for i := 0; i < 3; i++ {
		msg := &Message{Body: []byte("untouched")}
		assert.NoError(t, cycler.Process(msg))
		assert.Equal(t, "untouched", string(msg.Body))
		assert.Equal(t, NoOp, cycler.Next())
	}
}

func TestResponseCycler_CopiesResponses(t *testing.T) {
	responses := []Processor{stamp("r0"), stamp("r1")}
	cycler := NewResponseCycler(responses)
	responses[0] = stamp("changed")

	assert.Equal(t, []Processor{stamp("r0"), stamp("r1")}, cycler.Responses())
}
