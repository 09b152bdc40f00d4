package controlplane

import "sort"

// Assignment is one worker's share of a test or suite scenario (spec
// §4.8 step 5).
type Assignment struct {
	WorkerID        string
	TestID          string
	TaskType        string
	Parameters      map[string]string
	TargetTps       float64
	MaxConcurrency  int
	DurationSeconds int
	RampUpSeconds   int
}

// Plan computes per-worker assignments (spec §4.8's Assignment
// Planner): filter workers by capability, then distribute
// totalConcurrency and totalTps proportional to each eligible worker's
// available capacity (maxCapacity - currentLoad), rounding down and
// handing remainders to the workers with the largest fractional parts
// (Hamilton apportionment / largest-remainder method).
func Plan(workers []WorkerRecord, testID, taskType string, parameters map[string]string, totalConcurrency int, totalTps float64, durationSeconds, rampUpSeconds int) []Assignment {
	eligible := make([]WorkerRecord, 0, len(workers))
	for _, w := range workers {
		if w.Capabilities[taskType] {
			eligible = append(eligible, w)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	available := make([]float64, len(eligible))
	var totalAvailable float64
	for i, w := range eligible {
		a := float64(w.MaxCapacity - w.CurrentLoad)
		if a < 0 {
			a = 0
		}
		available[i] = a
		totalAvailable += a
	}
	if totalAvailable == 0 {
		return nil
	}

	concurrencyShares := hamiltonApportion(available, totalAvailable, float64(totalConcurrency))
	tpsShares := hamiltonApportion(available, totalAvailable, totalTps)

	assignments := make([]Assignment, len(eligible))
	for i, w := range eligible {
		assignments[i] = Assignment{
			WorkerID:        w.WorkerID,
			TestID:          testID,
			TaskType:        taskType,
			Parameters:      parameters,
			TargetTps:       float64(tpsShares[i]),
			MaxConcurrency:  concurrencyShares[i],
			DurationSeconds: durationSeconds,
			RampUpSeconds:   rampUpSeconds,
		}
	}
	return assignments
}

// hamiltonApportion distributes total indivisible units across weights
// proportional to weight/totalWeight: each gets floor(share), then the
// workers with the largest fractional remainder each get one more unit
// until the sum matches round(total).
func hamiltonApportion(weights []float64, totalWeight, total float64) []int {
	n := len(weights)
	floors := make([]int, n)
	fracs := make([]float64, n)
	sumFloors := 0
	for i, w := range weights {
		share := w / totalWeight * total
		floors[i] = int(share)
		fracs[i] = share - float64(floors[i])
		sumFloors += floors[i]
	}

	remainder := int(total+0.5) - sumFloors
	if remainder <= 0 {
		return floors
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return fracs[order[a]] > fracs[order[b]] })

	for k := 0; k < remainder && k < n; k++ {
		floors[order[k]]++
	}
	return floors
}
