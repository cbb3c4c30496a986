package models

// ContactRecord is one analyzed business card as returned by the analysis endpoint
type ContactRecord struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty" parquet:"name,optional"`
	Position string `json:"position,omitempty" yaml:"position,omitempty" parquet:"position,optional"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty" parquet:"company,optional"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty" parquet:"phone,optional"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty" parquet:"email,optional"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty" parquet:"website,optional"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty" parquet:"address,optional"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty" parquet:"error,optional"`
}

// Failed reports whether the analysis endpoint marked this entry as a per-item failure
func (c ContactRecord) Failed() bool {
	return c.Error != ""
}

// DisplayName returns the contact name or a placeholder for unnamed contacts
func (c ContactRecord) DisplayName() string {
	if c.Name == "" {
		return "unnamed contact"
	}
	return c.Name
}

// ResultSet holds the records of the most recent successful analysis call
type ResultSet struct {
	Records []ContactRecord `json:"records" yaml:"records"`
	Valid   []ContactRecord `json:"-" yaml:"-"`
}

// NewResultSet wraps records and derives the valid (error free) subsequence
func NewResultSet(records []ContactRecord) *ResultSet {
	rs := &ResultSet{
		Records: records,
		Valid:   make([]ContactRecord, 0, len(records)),
	}
	for _, r := range records {
		if !r.Failed() {
			rs.Valid = append(rs.Valid, r)
		}
	}
	return rs
}

// Len returns the number of valid contacts; a nil set is empty
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Valid)
}
