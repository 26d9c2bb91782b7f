package model

import (
	"encoding/json"
	"fmt"

	"github.com/pixai-app/pixai-api/common/config"
)

// CreditPlan is one purchasable credit pack. Price is in whole units of
// config.StripeCurrency.
type CreditPlan struct {
	Id      string `json:"id"`
	Price   int64  `json:"price"`
	Credits int64  `json:"credits"`
	Desc    string `json:"desc"`
}

var defaultCreditPlans = []CreditPlan{
	{Id: "Basic", Price: 150, Credits: 100, Desc: "Best for personal use."},
	{Id: "Advanced", Price: 750, Credits: 500, Desc: "Best for business use."},
	{Id: "Business", Price: 4500, Credits: 5000, Desc: "Best for enterprise use."},
}

func GetCreditPlans() ([]CreditPlan, error) {
	if config.CreditPlansJSON == "" {
		return defaultCreditPlans, nil
	}
	var plans []CreditPlan
	if err := json.Unmarshal([]byte(config.CreditPlansJSON), &plans); err != nil {
		return nil, fmt.Errorf("invalid CREDIT_PLANS: %w", err)
	}
	return plans, nil
}

func GetCreditPlanById(id string) (*CreditPlan, error) {
	plans, err := GetCreditPlans()
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].Id == id {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("unknown plan %q", id)
}
