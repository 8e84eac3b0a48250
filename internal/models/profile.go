package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidProfile is returned when onboarding or profile-edit input cannot
// produce a UserProfile.
var ErrInvalidProfile = errors.New("invalid profile")

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "Beginner"
	LevelIntermediate FitnessLevel = "Intermediate"
	LevelAdvanced     FitnessLevel = "Advanced"
	LevelAthlete      FitnessLevel = "Athlete"
)

type FitnessGoal string

const (
	GoalWeightLoss  FitnessGoal = "Weight Loss"
	GoalMuscleGain  FitnessGoal = "Muscle Gain"
	GoalStrength    FitnessGoal = "Build Strength"
	GoalEndurance   FitnessGoal = "Improve Endurance"
	GoalFlexibility FitnessGoal = "Increase Flexibility"
	GoalSports      FitnessGoal = "Sports Performance"
	GoalGeneral     FitnessGoal = "General Fitness"
)

type WorkoutType string

const (
	TypeWeightlifting WorkoutType = "Weightlifting"
	TypeCardio        WorkoutType = "Cardio"
	TypeHIIT          WorkoutType = "HIIT"
	TypeYoga          WorkoutType = "Yoga"
	TypeSports        WorkoutType = "Sports Training"
	TypeCalisthenics  WorkoutType = "Calisthenics"
	TypeCrossFit      WorkoutType = "CrossFit"
)

type Equipment string

const (
	EquipmentDumbbells       Equipment = "Dumbbells"
	EquipmentBarbell         Equipment = "Barbell"
	EquipmentKettlebell      Equipment = "Kettlebell"
	EquipmentResistanceBands Equipment = "Resistance Bands"
	EquipmentPullupBar       Equipment = "Pull-up Bar"
	EquipmentBench           Equipment = "Bench"
	EquipmentMachine         Equipment = "Gym Machines"
	EquipmentNone            Equipment = "No Equipment"
)

// WorkoutFrequency is the number of training days per week the user asked for.
type WorkoutFrequency string

const (
	FrequencyTwoDays   WorkoutFrequency = "2 days per week"
	FrequencyThreeDays WorkoutFrequency = "3 days per week"
	FrequencyFourDays  WorkoutFrequency = "4 days per week"
	FrequencyFiveDays  WorkoutFrequency = "5 days per week"
	FrequencySixDays   WorkoutFrequency = "6 days per week"
	FrequencySevenDays WorkoutFrequency = "7 days per week"
)

var frequencyDays = map[WorkoutFrequency]int{
	FrequencyTwoDays:   2,
	FrequencyThreeDays: 3,
	FrequencyFourDays:  4,
	FrequencyFiveDays:  5,
	FrequencySixDays:   6,
	FrequencySevenDays: 7,
}

// DaysPerWeek returns 2..7, or 0 for an unknown value.
func (f WorkoutFrequency) DaysPerWeek() int {
	return frequencyDays[f]
}

// UserProfile is replaced wholesale on edit; nothing mutates it in place.
type UserProfile struct {
	Name                  string           `json:"name"`
	Age                   int              `json:"age"`
	FitnessLevel          FitnessLevel     `json:"fitness_level"`
	Goals                 []FitnessGoal    `json:"goals"`
	Restrictions          []string         `json:"restrictions"`
	PreferredWorkoutTypes []WorkoutType    `json:"preferred_workout_types"`
	AvailableEquipment    []Equipment      `json:"available_equipment"`
	WorkoutFrequency      WorkoutFrequency `json:"workout_frequency"`
}

// ProfileInput is the raw onboarding form. Age and restrictions arrive as the
// user typed them.
type ProfileInput struct {
	Name                  string           `json:"name"`
	Age                   string           `json:"age"`
	FitnessLevel          FitnessLevel     `json:"fitness_level"`
	Goals                 []FitnessGoal    `json:"goals"`
	Restrictions          string           `json:"restrictions"`
	PreferredWorkoutTypes []WorkoutType    `json:"preferred_workout_types"`
	AvailableEquipment    []Equipment      `json:"available_equipment"`
	WorkoutFrequency      WorkoutFrequency `json:"workout_frequency"`
}

// Profile validates the input and builds a UserProfile. Errors wrap
// ErrInvalidProfile.
func (in ProfileInput) Profile() (UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return UserProfile{}, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	if err != nil || age <= 0 {
		return UserProfile{}, fmt.Errorf("%w: age must be a positive number", ErrInvalidProfile)
	}
	if len(in.Goals) == 0 {
		return UserProfile{}, fmt.Errorf("%w: at least one goal is required", ErrInvalidProfile)
	}
	if len(in.PreferredWorkoutTypes) == 0 {
		return UserProfile{}, fmt.Errorf("%w: at least one workout type is required", ErrInvalidProfile)
	}
	if len(in.AvailableEquipment) == 0 {
		return UserProfile{}, fmt.Errorf("%w: at least one equipment option is required", ErrInvalidProfile)
	}

	level := in.FitnessLevel
	if level == "" {
		level = LevelBeginner
	}
	freq := in.WorkoutFrequency
	if freq == "" {
		freq = FrequencyThreeDays
	}
	if freq.DaysPerWeek() == 0 {
		return UserProfile{}, fmt.Errorf("%w: unknown workout frequency %q", ErrInvalidProfile, freq)
	}

	return UserProfile{
		Name:                  name,
		Age:                   age,
		FitnessLevel:          level,
		Goals:                 in.Goals,
		Restrictions:          splitRestrictions(in.Restrictions),
		PreferredWorkoutTypes: in.PreferredWorkoutTypes,
		AvailableEquipment:    in.AvailableEquipment,
		WorkoutFrequency:      freq,
	}, nil
}

func splitRestrictions(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
