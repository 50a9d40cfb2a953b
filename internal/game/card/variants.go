package card

import "slices"

// MaxHealth returns the printed vitality of a Character or Backup, 0 otherwise.
func (c *Card) MaxHealth() int {
	if c.vitals == nil {
		return 0
	}
	return c.vitals.max
}

// Health returns the remaining vitality of a Character or Backup, 0 otherwise.
func (c *Card) Health() int {
	if c.vitals == nil {
		return 0
	}
	return c.vitals.current
}

// Damage removes amount vitality, never going below 0, and returns the new health.
// Cards without vitality ignore damage.
func (c *Card) Damage(amount int) int {
	if c.vitals == nil || amount <= 0 {
		return c.Health()
	}
	c.vitals.current = max(c.vitals.current-amount, 0)
	return c.vitals.current
}

// Heal restores amount vitality, never going above the maximum, and returns the new health.
func (c *Card) Heal(amount int) int {
	if c.vitals == nil || amount <= 0 {
		return c.Health()
	}
	c.vitals.current = min(c.vitals.current+amount, c.vitals.max)
	return c.vitals.current
}

// IsDefeated reports whether a Character has run out of vitality.
func (c *Card) IsDefeated() bool {
	return c.data.Kind == KindCharacter && c.vitals.current <= 0
}

// IsDestroyed reports whether a Backup has run out of vitality.
func (c *Card) IsDestroyed() bool {
	return c.data.Kind == KindBackup && c.vitals.current <= 0
}

// HandSize is the number of cards a Character's player draws up to each turn.
func (c *Card) HandSize() int {
	if c.data.Kind != KindCharacter {
		return 0
	}
	return c.data.HandSize
}

// Speed returns the printed speed of an Attack.
func (c *Card) Speed() int { return c.data.Speed }

// AttackDamage returns the printed damage of an Attack.
func (c *Card) AttackDamage() int { return c.data.Damage }

// AttackZone returns the printed zone an Attack travels at.
func (c *Card) AttackZone() BlockZone { return c.data.AttackZone }

// Throw reports whether an Attack is a throw.
func (c *Card) Throw() bool { return c.data.Throw }

// Flash reports whether an Attack has flash.
func (c *Card) Flash() bool { return c.data.Flash }

// ActiveZones returns the zones an Attack currently occupies.
func (c *Card) ActiveZones() []BlockZone {
	if c.attack == nil {
		return nil
	}
	return slices.Clone(c.attack.activeZones)
}

// SetActiveZones replaces the zones an Attack currently occupies. It is ignored for
// other variants.
func (c *Card) SetActiveZones(zones ...BlockZone) {
	if c.attack == nil {
		return
	}
	c.attack.activeZones = slices.Clone(zones)
}
