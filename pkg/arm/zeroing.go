package arm

import (
	"context"
	"fmt"

	"github.com/marcusholm/go-armctl/internal/log"
)

// ZeroFTSensors zeros the robot's force and torque sensors. Recommended (but
// not mandatory) before any operation that relies on accurate force/torque
// measurement.
//
// The robot must not be in contact with anything while this runs, otherwise
// the result is inaccurate. That precondition is physical and cannot be
// enforced here; it is only logged.
func ZeroFTSensors(ctx context.Context, s *Session) error {
	before, err := s.Robot().States(ctx)
	if err != nil {
		return fmt.Errorf("zero ft sensors: %w", err)
	}
	log.Info("TCP wrench before sensor zeroing",
		"force_n", before.ExtWrenchInWorld.Force,
		"torque_nm", before.ExtWrenchInWorld.Torque)

	log.Warn("zeroing force/torque sensors, make sure nothing is in contact with the robot")
	if err := s.RunPrimitive(ctx, PrimZeroFTSensor); err != nil {
		return fmt.Errorf("zero ft sensors: %w", err)
	}

	after, err := s.Robot().States(ctx)
	if err != nil {
		return fmt.Errorf("zero ft sensors: %w", err)
	}
	log.Info("sensor zeroing complete",
		"force_n", after.ExtWrenchInWorld.Force,
		"torque_nm", after.ExtWrenchInWorld.Torque)
	return nil
}
