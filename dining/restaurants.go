package dining

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// =============================================================================
// USERS
// =============================================================================

// CreateUser registers a diner. Emails are stored lower-cased and unique.
func (s *Service) CreateUser(ctx context.Context, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxLabelLength {
		return nil, &ValidationError{Field: "name", Message: "must be between 1 and 50 characters"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, &ValidationError{Field: "email", Message: err.Error()}
	}

	u := User{Name: name, Email: strings.ToLower(addr.Address), CreatedAt: s.now()}
	err = s.inTx(ctx, "creating the user", func(st Store) error {
		var err error
		u.ID, err = st.CreateUser(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetUser(ctx context.Context, id UserID) (*User, error) {
	var u *User
	err := s.inTx(ctx, "retrieving the user", func(st Store) error {
		var err error
		if u, err = st.GetUser(ctx, id); err == nil && u == nil {
			return ErrUserNotFound
		}
		return err
	})
	return u, err
}

// =============================================================================
// RESTAURANTS
// =============================================================================

// RestaurantInput is a restaurant's editable details. Location is written
// "latitude,longitude".
type RestaurantInput struct {
	Name        string
	Description string
	Category    string
	Location    string
}

func (in RestaurantInput) parse() (Restaurant, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return Restaurant{}, &ValidationError{Field: "name", Message: "must not be empty"}
	case len(in.Name) > maxLabelLength:
		return Restaurant{}, &ValidationError{Field: "name", Message: "must not exceed 50 characters"}
	case len(in.Category) > maxLabelLength:
		return Restaurant{}, &ValidationError{Field: "category", Message: "must not exceed 50 characters"}
	}
	loc, err := ParseLocation(in.Location)
	if err != nil {
		return Restaurant{}, err
	}
	return Restaurant{Name: in.Name, Description: in.Description, Category: in.Category, Location: loc}, nil
}

// ParseLocation parses "latitude,longitude".
func ParseLocation(s string) (Location, error) {
	bad := &ValidationError{Field: "location", Message: fmt.Sprintf("%q is not a latitude,longitude pair", s)}
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return Location{}, bad
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || latitude < -90 || latitude > 90 {
		return Location{}, bad
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil || longitude < -180 || longitude > 180 {
		return Location{}, bad
	}
	return Location{Latitude: latitude, Longitude: longitude}, nil
}

func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// CreateRestaurant opens a restaurant managed by the user, who becomes a
// professional user. A user manages at most one restaurant.
func (s *Service) CreateRestaurant(ctx context.Context, manager UserID, in RestaurantInput) (*Restaurant, error) {
	r, err := in.parse()
	if err != nil {
		return nil, err
	}
	r.ManagerID = manager

	err = s.inTx(ctx, "creating the restaurant", func(st Store) error {
		if err := requireUser(ctx, st, manager); err != nil {
			return err
		}
		existing, err := st.RestaurantByManager(ctx, manager)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyManager
		}
		if r.ID, err = st.CreateRestaurant(ctx, r); err != nil {
			return err
		}
		return st.SetProfessional(ctx, manager)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRestaurant changes the details of the restaurant the user manages.
func (s *Service) UpdateRestaurant(ctx context.Context, manager UserID, in RestaurantInput) (*Restaurant, error) {
	r, err := in.parse()
	if err != nil {
		return nil, err
	}
	err = s.inTx(ctx, "updating the restaurant", func(st Store) error {
		existing, err := st.RestaurantByManager(ctx, manager)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrRestaurantNotFound
		}
		r.ID, r.ManagerID = existing.ID, manager
		return st.UpdateRestaurant(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) GetRestaurant(ctx context.Context, id RestaurantID) (*Restaurant, error) {
	var r *Restaurant
	err := s.inTx(ctx, "retrieving the restaurant", func(st Store) error {
		var err error
		if r, err = st.GetRestaurant(ctx, id); err == nil && r == nil {
			return ErrRestaurantNotFound
		}
		return err
	})
	return r, err
}

// ManagedRestaurant resolves the restaurant a professional user manages.
func (s *Service) ManagedRestaurant(ctx context.Context, manager UserID) (*Restaurant, error) {
	var r *Restaurant
	err := s.inTx(ctx, "retrieving the restaurant", func(st Store) error {
		var err error
		if r, err = st.RestaurantByManager(ctx, manager); err == nil && r == nil {
			return ErrRestaurantNotFound
		}
		return err
	})
	return r, err
}

func (s *Service) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	var rs []Restaurant
	err := s.inTx(ctx, "retrieving restaurants", func(st Store) error {
		var err error
		rs, err = st.ListRestaurants(ctx)
		return err
	})
	return rs, err
}

// =============================================================================
// REVIEWS
// =============================================================================

// MakeReview records a 1-5 rating of a restaurant.
func (s *Service) MakeReview(ctx context.Context, userID UserID, restaurantID RestaurantID, rating int, title, body string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	if len(title) > maxLabelLength {
		return nil, &ValidationError{Field: "title", Message: "must not exceed 50 characters"}
	}

	rv := Review{RestaurantID: restaurantID, UserID: userID, Rating: rating, Title: title, Body: body}
	err := s.inTx(ctx, "inserting the review", func(st Store) error {
		if err := requireRestaurant(ctx, st, restaurantID); err != nil {
			return err
		}
		u, err := st.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}
		rv.UserName = u.Name
		rv.ID, err = st.InsertReview(ctx, rv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (s *Service) Reviews(ctx context.Context, restaurantID RestaurantID) ([]Review, error) {
	var rs []Review
	err := s.inTx(ctx, "retrieving reviews", func(st Store) error {
		var err error
		rs, err = st.ListReviews(ctx, restaurantID)
		return err
	})
	return rs, err
}
