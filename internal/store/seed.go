package store

import (
	"fmt"
	"math/rand"
	"time"
)

// Seed name pools. The generated rows are stand-in data for a fresh
// install; they are replaced by real records as the community is entered.
var (
	seedMaleNames   = []string{"Mina", "Bishoy", "Kyrillos", "Abanoub", "Marco", "Youssef", "Peter", "Fady", "George", "Karas"}
	seedFemaleNames = []string{"Marina", "Irini", "Demiana", "Veronia", "Mariam", "Monica", "Sandra", "Julia", "Nardine", "Clara"}
	seedFatherNames = []string{"Adel", "Samir", "Nabil", "Magdy", "Emad", "Ashraf", "Sameh", "Hany", "Maged", "Rafik"}
	seedFamilyNames = []string{"Gerges", "Tadros", "Hanna", "Ibrahim", "Fahmy", "Bekhit", "Shenouda", "Ghattas", "Mansour", "Khalil"}
	seedChurches    = []string{"St Mark", "St Mary", "Archangel Michael", "St George"}
)

var (
	defaultOccupations = []string{"Engineer", "Doctor", "Teacher", "Accountant", "Pharmacist", "Lawyer", "Student"}
	defaultServices    = []string{"Sunday School", "Choir", "Deacons", "Youth Meeting", "Visitations"}
	defaultPersonal    = []string{"new member", "needs follow-up", "university", "servant"}
	defaultConfession  = []string{"general", "first confession", "pre-marriage", "follow-up"}
)

// seedLocked populates a fresh engine: n generated members with a few
// logs, the default settings lists, and two starter templates. The caller
// holds the write lock; nothing here persists.
func (s *Store) seedLocked(n int) error {
	if err := s.seedMembersLocked(n); err != nil {
		return err
	}

	for key, values := range map[string][]string{
		SettingOccupations:    defaultOccupations,
		SettingServices:       defaultServices,
		SettingPersonalTags:   defaultPersonal,
		SettingConfessionTags: defaultConfession,
	} {
		if err := s.putSettingRow(key, values); err != nil {
			return err
		}
	}

	templates := []*Template{
		{
			Title: "Birthday greeting",
			Body:  "Happy birthday {first name}! May God bless you and your family.",
		},
		{
			Title: "Anniversary greeting",
			Body:  "Congratulations {spouse-of-husband name} and {spouse-of-wife name} on your anniversary.",
		},
	}
	for _, t := range templates {
		if err := s.insertTemplateRow(t); err != nil {
			return err
		}
	}
	return nil
}

// seedMembersLocked inserts n generated member rows, with confession logs
// for roughly a third of them. The RNG is fix-seeded so names and shapes
// repeat for a given n; confession dates are relative to the current day,
// so a fresh engine always has alert-worthy rows.
func (s *Store) seedMembersLocked(n int) error {
	rng := rand.New(rand.NewSource(int64(n)))

	for i := 0; i < n; i++ {
		male := i%2 == 0
		first := seedFemaleNames[i%len(seedFemaleNames)]
		gender := "female"
		if male {
			first = seedMaleNames[i%len(seedMaleNames)]
			gender = "male"
		}

		birth := time.Date(1955+rng.Intn(50), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		m := &Member{
			FirstName:    first,
			FatherName:   seedFatherNames[(i+rng.Intn(3))%len(seedFatherNames)],
			FamilyName:   seedFamilyNames[i%len(seedFamilyNames)],
			Phone1:       fmt.Sprintf("0100%07d", rng.Intn(10000000)),
			Gender:       gender,
			BirthDate:    birth.Format("2006-01-02"),
			SocialStatus: "single",
			Church:       seedChurches[i%len(seedChurches)],
			Occupation:   defaultOccupations[i%len(defaultOccupations)],
			Services:     []string{},
			PersonalTags: []string{},
			Children:     []Child{},
			CustomFields: map[string]any{},
		}
		if rng.Intn(2) == 0 {
			m.Phone1WhatsApp = true
		}

		// Roughly half are married, with an anniversary 20-45 years after birth.
		if rng.Intn(2) == 0 {
			m.SocialStatus = "married"
			marriage := birth.AddDate(20+rng.Intn(15), rng.Intn(12), rng.Intn(28))
			m.MarriageDate = marriage.Format("2006-01-02")
		}

		// Two thirds have started confession at some point in the past years.
		if rng.Intn(3) > 0 {
			start := time.Now().AddDate(-1-rng.Intn(5), -rng.Intn(12), 0)
			m.ConfessionStart = start.Format("2006-01-02")
		}

		if err := s.insertMemberRow(m); err != nil {
			return err
		}

		if m.ConfessionStart != "" && rng.Intn(3) == 0 {
			l := &Log{
				MemberID: m.ID,
				Date:     time.Now().AddDate(0, 0, -rng.Intn(90)).Format("2006-01-02"),
				Tags:     []string{defaultConfession[rng.Intn(len(defaultConfession))]},
			}
			if err := s.insertLogRow(l); err != nil {
				return err
			}
		}
	}
	return nil
}
