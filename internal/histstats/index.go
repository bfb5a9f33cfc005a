package histstats

// Key identifies one row of a grouped-statistics table. Dimensions a table
// does not group by are held at their zero value by that table's KeyFunc, so
// keys from the same KeyFunc are always comparable like-for-like.
type Key struct {
	Attraction string
	Month      int
	Hour       int
	Weekday    int
}

// KeyFunc projects an observation onto the grouping key of one table.
type KeyFunc func(Observation) Key

// Predefined groupings. These are the six key-sets the offline aggregation
// job materializes.
var (
	ByMonth        KeyFunc = func(o Observation) Key { return Key{Attraction: o.Attraction, Month: o.Month} }
	ByHour         KeyFunc = func(o Observation) Key { return Key{Attraction: o.Attraction, Hour: o.HourInt} }
	ByWeekday      KeyFunc = func(o Observation) Key { return Key{Attraction: o.Attraction, Weekday: o.Weekday} }
	ByMonthWeekday KeyFunc = func(o Observation) Key {
		return Key{Attraction: o.Attraction, Month: o.Month, Weekday: o.Weekday}
	}
	ByHourWeekday KeyFunc = func(o Observation) Key {
		return Key{Attraction: o.Attraction, Hour: o.HourInt, Weekday: o.Weekday}
	}
	ByMonthHour KeyFunc = func(o Observation) Key {
		return Key{Attraction: o.Attraction, Month: o.Month, Hour: o.HourInt}
	}
)

// Table is one grouped-statistics table: every distinct key maps to exactly
// one Stats row. Tables are built once and never mutated afterwards.
type Table struct {
	name string
	key  KeyFunc
	rows map[Key]Stats
}

// BuildTable groups observations with the given key function and summarizes
// each group. This is the single generic builder behind all six tables.
func BuildTable(name string, obs []Observation, key KeyFunc) *Table {
	groups := make(map[Key][]float64)
	for _, o := range obs {
		k := key(o)
		groups[k] = append(groups[k], o.WaitTime)
	}
	rows := make(map[Key]Stats, len(groups))
	for k, values := range groups {
		rows[k] = Summarize(values)
	}
	return &Table{name: name, key: key, rows: rows}
}

// Name returns the table's grouping name (e.g. "mes_hora").
func (t *Table) Name() string { return t.name }

// Len returns the number of distinct keys in the table.
func (t *Table) Len() int { return len(t.rows) }

// Lookup returns the exact-match row for a key. There is no interpolation
// across keys; missing combinations are the caller's fallback concern.
func (t *Table) Lookup(k Key) (Stats, bool) {
	s, ok := t.rows[k]
	return s, ok
}

// Has reports whether the table holds a row for the key.
func (t *Table) Has(k Key) bool {
	_, ok := t.rows[k]
	return ok
}

// Index bundles the six grouping tables plus dataset-wide statistics. It is
// read-only after construction, so concurrent lookups need no locking.
type Index struct {
	Month        *Table
	Hour         *Table
	Weekday      *Table
	MonthWeekday *Table
	HourWeekday  *Table
	MonthHour    *Table

	Global Stats
}

// NewIndex builds all six tables and the global statistics from the full
// observation set. Done once at artifact-load time.
func NewIndex(obs []Observation) *Index {
	return &Index{
		Month:        BuildTable("mes", obs, ByMonth),
		Hour:         BuildTable("hora", obs, ByHour),
		Weekday:      BuildTable("dia", obs, ByWeekday),
		MonthWeekday: BuildTable("mes_dia", obs, ByMonthWeekday),
		HourWeekday:  BuildTable("hora_dia", obs, ByHourWeekday),
		MonthHour:    BuildTable("mes_hora", obs, ByMonthHour),
		Global:       Summarize(WaitTimes(obs)),
	}
}

// NearestHourWithData retries the hourly table at +/-1 hour when the exact
// hour has no rows for the attraction. It returns the hour to use and whether
// any hour-level data was found. This softens sparsity for quiet attractions.
func (ix *Index) NearestHourWithData(attraction string, hourInt int) (int, bool) {
	if ix.Hour.Has(Key{Attraction: attraction, Hour: hourInt}) {
		return hourInt, true
	}
	if hourInt > 0 {
		for _, h := range []int{hourInt - 1, hourInt + 1} {
			if h >= 0 && h < 24 && ix.Hour.Has(Key{Attraction: attraction, Hour: h}) {
				return h, true
			}
		}
	}
	return hourInt, false
}
