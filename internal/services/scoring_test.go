package services

import (
	"testing"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var scoringNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedScorer() *Scorer {
	return &Scorer{now: func() time.Time { return scoringNow }}
}

func bornYearsAgo(years int) *time.Time {
	dob := scoringNow.AddDate(-years, 0, -10)
	return &dob
}

func TestScorer_Percentage(t *testing.T) {
	candidate := &models.ProfileDetail{
		Religion:     "Hindu",
		Community:    "Maratha",
		MotherTongue: "Marathi",
		City:         "Pune",
		State:        "Maharashtra",
		Height:       170,
		DateOfBirth:  bornYearsAgo(27),
	}

	tests := []struct {
		name      string
		pref      *models.PartnerPreference
		candidate *models.ProfileDetail
		want      int
	}{
		{
			name:      "no preference",
			pref:      nil,
			candidate: candidate,
			want:      0,
		},
		{
			name:      "preference states nothing",
			pref:      &models.PartnerPreference{Religion: "  "},
			candidate: candidate,
			want:      0,
		},
		{
			name: "everything satisfied",
			pref: &models.PartnerPreference{
				AgeMin: testutil.IntPtr(25), AgeMax: testutil.IntPtr(30),
				HeightMin: testutil.IntPtr(160), HeightMax: testutil.IntPtr(180),
				Religion: "hindu", Caste: "MARATHA", MotherTongue: " Marathi ",
				City: "pune", State: "maharashtra",
			},
			candidate: candidate,
			want:      100,
		},
		{
			name: "age out of range, religion matches",
			pref: &models.PartnerPreference{
				AgeMin: testutil.IntPtr(30), AgeMax: testutil.IntPtr(35),
				Religion: "Hindu",
			},
			candidate: candidate,
			want:      31, // 20 of 65
		},
		{
			name: "open ended age bound",
			pref: &models.PartnerPreference{
				AgeMin: testutil.IntPtr(25),
			},
			candidate: candidate,
			want:      100,
		},
		{
			name: "unknown age never satisfies",
			pref: &models.PartnerPreference{
				AgeMin: testutil.IntPtr(18), AgeMax: testutil.IntPtr(99),
				Religion: "Hindu",
			},
			candidate: &models.ProfileDetail{Religion: "Hindu"},
			want:      31,
		},
		{
			name: "unknown height never satisfies",
			pref: &models.PartnerPreference{
				HeightMin: testutil.IntPtr(150),
				City:      "Pune",
			},
			candidate: &models.ProfileDetail{City: "Pune"},
			want:      40, // 10 of 25
		},
		{
			name:      "empty candidate field does not match",
			pref:      &models.PartnerPreference{MotherTongue: "Marathi", State: "Maharashtra"},
			candidate: &models.ProfileDetail{State: "Maharashtra"},
			want:      33, // 5 of 15
		},
		{
			name:      "caste compares against community",
			pref:      &models.PartnerPreference{Caste: "maratha"},
			candidate: candidate,
			want:      100,
		},
		{
			name:      "nothing satisfied",
			pref:      &models.PartnerPreference{Religion: "Sikh", City: "Delhi"},
			candidate: candidate,
			want:      0,
		},
	}

	scorer := fixedScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Percentage(tt.pref, tt.candidate))
		})
	}
}

func TestScorer_PercentageIsBounded(t *testing.T) {
	scorer := fixedScorer()
	religions := []string{"", "Hindu", "Muslim", "Jain"}
	cities := []string{"", "Pune", "Mumbai"}

	for _, prefReligion := range religions {
		for _, candReligion := range religions {
			for _, city := range cities {
				pref := &models.PartnerPreference{
					Religion: prefReligion,
					City:     city,
					AgeMin:   testutil.IntPtr(20),
					AgeMax:   testutil.IntPtr(40),
				}
				candidate := &models.ProfileDetail{
					Religion:    candReligion,
					City:        "Pune",
					DateOfBirth: bornYearsAgo(45),
				}
				got := scorer.Percentage(pref, candidate)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 100)
			}
		}
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, inRange(25, testutil.IntPtr(25), testutil.IntPtr(30)))
	assert.True(t, inRange(30, testutil.IntPtr(25), testutil.IntPtr(30)))
	assert.False(t, inRange(31, testutil.IntPtr(25), testutil.IntPtr(30)))
	assert.False(t, inRange(24, testutil.IntPtr(25), nil))
	assert.True(t, inRange(99, nil, nil))
}
