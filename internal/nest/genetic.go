package nest

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/CarpetNest/internal/model"
)

// GeneticConfig holds parameters for the genetic ordering search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// chromosome represents a candidate solution: one carpet ordering.
type chromosome struct {
	order   []int // indices into the carpet slice
	fitness float64
}

// geneticOrderer searches carpet permutations for one that allocates into
// fewer, fuller sheets. Rotation needs no genes here: the placer already
// tries every configured angle per candidate position.
type geneticOrderer struct {
	nester    *Nester
	config    GeneticConfig
	carpets   []model.Carpet
	inventory []model.SheetType
	rng       *rand.Rand
}

func newGeneticOrderer(settings model.NestSettings, config GeneticConfig, carpets []model.Carpet, inventory []model.SheetType, seed int64) *geneticOrderer {
	// Trial allocations must not recurse into another ordering search and
	// must stay silent.
	trial := settings
	trial.Ordering = model.OrderingAsGiven
	return &geneticOrderer{
		nester:    &Nester{Settings: trial},
		config:    config,
		carpets:   carpets,
		inventory: inventory,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// optimize runs the evolution loop and returns the fittest chromosome.
func (g *geneticOrderer) optimize() chromosome {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, g.config.PopulationSize)

		// Elitism: carry over the best individuals unchanged.
		eliteCount := g.config.EliteCount
		if eliteCount > len(population) {
			eliteCount = len(population)
		}
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, g.copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			newPop = append(newPop, child)
		}
		population = newPop
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return population[0]
}

// initPopulation creates random permutations, plus one seeded with the
// greedy area-descending order as a good starting point.
func (g *geneticOrderer) initPopulation() []chromosome {
	count := len(g.carpets)
	population := make([]chromosome, g.config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: g.rng.Perm(count)}
	}
	if g.config.PopulationSize > 0 {
		population[0] = g.greedyChromosome()
	}
	return population
}

func (g *geneticOrderer) greedyChromosome() chromosome {
	order := make([]int, len(g.carpets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return g.carpets[order[i]].Polygon.Area() > g.carpets[order[j]].Polygon.Area()
	})
	return chromosome{order: order}
}

// evaluate scores a chromosome by running a trial allocation and measuring
// material efficiency, with penalties for unplaced carpets and for every
// extra sheet consumed.
func (g *geneticOrderer) evaluate(c chromosome) float64 {
	result := g.decode(c)
	if len(result.Sheets) == 0 {
		return 0
	}

	var used, total float64
	for _, s := range result.Sheets {
		used += s.UsedArea()
		total += s.TotalArea()
	}
	if total == 0 {
		return 0
	}
	efficiency := used / total

	fitness := efficiency - 0.1*float64(len(result.Unplaced)) - 0.05*float64(len(result.Sheets)-1)
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// decode runs an allocation with the chromosome's ordering against a
// scratch copy of the inventory, so trials never consume real stock.
func (g *geneticOrderer) decode(c chromosome) model.NestResult {
	ordered := make([]model.Carpet, len(c.order))
	for i, idx := range c.order {
		ordered[i] = g.carpets[idx]
	}
	scratch := append([]model.SheetType(nil), g.inventory...)
	return g.nester.allocate(ordered, scratch)
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOrderer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1) for permutations: a
// segment of parent1 survives in place, the rest fills in parent2 order.
func (g *geneticOrderer) orderCrossover(parent1, parent2 chromosome) chromosome {
	count := len(parent1.order)
	if count <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(count)
	point2 := g.rng.Intn(count)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, count)}
	inSegment := make(map[int]bool)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % count
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[childIdx] = idx
			childIdx = (childIdx + 1) % count
		}
	}
	return child
}

// mutate applies swap and inversion mutations in place.
func (g *geneticOrderer) mutate(c *chromosome) {
	count := len(c.order)
	if count < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(count)
		j := g.rng.Intn(count)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	// Inversion: reverse a segment (less frequent).
	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(count)
		j := g.rng.Intn(count)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.order[i], c.order[j] = c.order[j], c.order[i]
			i++
			j--
		}
	}
}

func (g *geneticOrderer) copyChromosome(c chromosome) chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, fitness: c.fitness}
}

// OrderGenetic searches carpet orderings with a genetic algorithm and
// returns the best sequence found. The seed is fixed so repeated runs of
// the same input produce the same layout.
func (n *Nester) OrderGenetic(carpets []model.Carpet, inventory []model.SheetType) []model.Carpet {
	if len(carpets) < 3 {
		return carpets
	}

	config := DefaultGeneticConfig()
	if len(carpets) > 20 {
		config.Generations = 150
	}
	if len(carpets) > 50 {
		config.Generations = 200
		config.PopulationSize = 80
	}

	g := newGeneticOrderer(n.Settings, config, carpets, inventory, 42)
	best := g.optimize()

	ordered := make([]model.Carpet, len(best.order))
	for i, idx := range best.order {
		ordered[i] = carpets[idx]
	}
	return ordered
}
