package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// airPayload is the wire shape of {farm}/{zone}/sensors/air (spec §6).
type airPayload struct {
	TemperatureC float64 `json:"temperature_c"`
	CO2ppm       float64 `json:"co2_ppm"`
	NH3ppm       float64 `json:"nh3_ppm"`
}

type feedLevelPayload struct {
	FeedKg float64 `json:"feed_kg"`
}

type waterLevelPayload struct {
	WaterL float64 `json:"water_l"`
}

type activityPayload struct {
	Activity float64 `json:"activity"`
}

// noisy adds zero-mean Gaussian noise with standard deviation sigma, then
// clamps to [0, +Inf) — every published observation is non-negative.
func noisy(value, sigma float64) float64 {
	v := value + rand.NormFloat64()*sigma
	return math.Max(0.0, v)
}

// Publish sends the four per-interval sensor groups spec §4.1 requires,
// each with its own Gaussian noise (sigma 0.2/30/2 for temperature/co2/nh3).
func (z *Zone) Publish(ctx context.Context, publish func(ctx context.Context, topic string, payload []byte) error) error {
	snap := z.Snapshot()
	prefix := fmt.Sprintf("%s/%s/sensors", z.Key.Farm, z.Key.Zone)

	air, err := json.Marshal(airPayload{
		TemperatureC: noisy(snap.TemperatureC, 0.2),
		CO2ppm:       noisy(snap.CO2ppm, 30.0),
		NH3ppm:       noisy(snap.NH3ppm, 2.0),
	})
	if err != nil {
		return err
	}
	if err := publish(ctx, prefix+"/air", air); err != nil {
		return err
	}

	feed, err := json.Marshal(feedLevelPayload{FeedKg: math.Max(0.0, snap.FeedKg)})
	if err != nil {
		return err
	}
	if err := publish(ctx, prefix+"/feed_level", feed); err != nil {
		return err
	}

	water, err := json.Marshal(waterLevelPayload{WaterL: math.Max(0.0, snap.WaterL)})
	if err != nil {
		return err
	}
	if err := publish(ctx, prefix+"/water_level", water); err != nil {
		return err
	}

	activity, err := json.Marshal(activityPayload{Activity: clampf(snap.Activity, 0.0, 1.0)})
	if err != nil {
		return err
	}
	return publish(ctx, prefix+"/activity", activity)
}
