package multisig

import (
	"errors"
	"multisig-vault/internal/model"

	"go.uber.org/multierr"
)

// Config is fixed when the system is deployed
type Config struct {
	Owner  model.Identity
	Quorum model.Quorum
	Policy model.ValidityPolicy
}

func (c Config) Validate() error {
	var err error
	if !c.Owner.Valid() {
		err = multierr.Append(err, errors.New("owner identity is missing or malformed: "+string(c.Owner)))
	}
	if qErr := c.Quorum.Validate(); qErr != nil {
		err = multierr.Append(err, qErr)
	}
	if !c.Policy.IsValid() {
		err = multierr.Append(err, errors.New("unknown signature policy: "+c.Policy.String()))
	}
	return err
}
