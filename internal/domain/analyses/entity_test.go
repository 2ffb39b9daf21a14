package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSector(t *testing.T) {
	for _, s := range Sectors() {
		assert.True(t, ValidSector(string(s)), "sector %q should be valid", s)
	}
	assert.False(t, ValidSector("Crypto"))
	assert.False(t, ValidSector("technology")) // case-sensitive, matches the dashboard values
	assert.False(t, ValidSector(""))
}

func TestSectorsCount(t *testing.T) {
	assert.Len(t, Sectors(), 10)
}

func TestRunResultCounts(t *testing.T) {
	res := RunResult{
		Trending: TrendingCompanyList{Companies: []TrendingCompany{{Name: "A"}, {Name: "B"}, {Name: "C"}}},
		Research: ResearchReport{Reports: []CompanyResearch{{Name: "A"}, {Name: "B"}, {Name: "C"}}},
		Decision: Decision{Chosen: "A", Rejected: []RejectedCompany{{Name: "B"}, {Name: "C"}}},
	}
	c := res.Counts()
	assert.Equal(t, 3, c.Companies)
	assert.Equal(t, 3, c.Researched)
	assert.Equal(t, 2, c.Rejected)
	assert.Equal(t, c.Companies-1, c.Rejected)
}
