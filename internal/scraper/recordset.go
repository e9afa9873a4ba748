package scraper

// RecordSet хранит записи в порядке первого появления, без повторов заголовков
type RecordSet struct {
	records []PostRecord
	seen    map[string]struct{}
}

func NewRecordSet() *RecordSet {
	return &RecordSet{seen: make(map[string]struct{})}
}

// Add добавляет запись; false для пустого или уже встреченного заголовка
func (rs *RecordSet) Add(rec PostRecord) bool {
	if rec.Title == "" {
		return false
	}
	if _, ok := rs.seen[rec.Title]; ok {
		return false
	}
	rs.seen[rec.Title] = struct{}{}
	rs.records = append(rs.records, rec)
	return true
}

func (rs *RecordSet) Len() int {
	return len(rs.records)
}

// Records возвращает копию
func (rs *RecordSet) Records() []PostRecord {
	out := make([]PostRecord, len(rs.records))
	copy(out, rs.records)
	return out
}
