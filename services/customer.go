package services

import "catering-menu/models"

// CustomerStore holds the delivery details of one session.
type CustomerStore struct {
	info models.CustomerInfo
}

// Update replaces all three fields at once.
func (s *CustomerStore) Update(name, phone, address string) {
	s.info = models.CustomerInfo{Name: name, Phone: phone, Address: address}
}

func (s *CustomerStore) Info() models.CustomerInfo {
	return s.info
}

func (s *CustomerStore) Validate() []string {
	return MissingCustomerFields(s.info)
}

// MissingCustomerFields returns the labels of empty required fields, in form order.
func MissingCustomerFields(info models.CustomerInfo) []string {
	var missing []string
	if info.Name == "" {
		missing = append(missing, models.FieldFullName)
	}
	if info.Phone == "" {
		missing = append(missing, models.FieldPhone)
	}
	if info.Address == "" {
		missing = append(missing, models.FieldAddress)
	}
	return missing
}
