package service

import (
	"github.com/alimikegami/astromart/internal/dto"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/golang-jwt/jwt"
)

func (s *ServiceTestSuite) parseToken(token string) jwt.MapClaims {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	s.Require().NoError(err)

	return parsed.Claims.(jwt.MapClaims)
}

func (s *ServiceTestSuite) Test_AddUser() {
	testCases := []struct {
		Name     string
		Request  dto.UserRequest
		Expected error
	}{
		{Name: "Valid request", Request: dto.UserRequest{Name: "test", Email: "Test@Gmail.com", Password: "123456"}},
		{Name: "Email already used", Request: dto.UserRequest{Name: "other", Email: "test@gmail.com", Password: "123456"}, Expected: errs.ErrEmailAlreadyUsed},
		{Name: "Missing email", Request: dto.UserRequest{Name: "test", Password: "123456"}, Expected: errs.ErrClient},
		{Name: "Missing name", Request: dto.UserRequest{Email: "x@gmail.com", Password: "123456"}, Expected: errs.ErrClient},
		{Name: "Invalid email", Request: dto.UserRequest{Name: "test", Email: "test", Password: "123456"}, Expected: errs.ErrClient},
		{Name: "Short password", Request: dto.UserRequest{Name: "test", Email: "y@gmail.com", Password: "123"}, Expected: errs.ErrClient},
	}

	for _, tc := range testCases {
		s.Run(tc.Name, func() {
			err := s.userService.AddUser(s.ctx, tc.Request)
			if tc.Expected == nil {
				s.NoError(err)
				return
			}
			s.ErrorIs(err, tc.Expected)
		})
	}

	user, err := s.users.GetUserByEmail(s.ctx, "test@gmail.com")
	s.Require().NoError(err)
	s.Equal(utils.RoleUser, user.Role)
	s.Len(user.ExternalID, 26)
	s.NotEqual("123456", user.HashedPassword)
}

func (s *ServiceTestSuite) Test_Login() {
	s.Require().NoError(s.userService.AddUser(s.ctx, dto.UserRequest{Name: "test", Email: "test@gmail.com", Password: "123456"}))

	resp, err := s.userService.Login(s.ctx, dto.UserRequest{Email: "test@gmail.com", Password: "123456"})
	s.Require().NoError(err)
	s.Equal(utils.RoleUser, resp.Role)

	claims := s.parseToken(resp.Token)
	s.Equal(resp.UserID, claims["externalID"])
	s.Equal("test@gmail.com", claims["email"])
	s.Equal(utils.RoleUser, claims["role"])

	_, err = s.userService.Login(s.ctx, dto.UserRequest{Email: "test@gmail.com", Password: "wrong"})
	s.ErrorIs(err, errs.ErrInvalidCredentialsEmail)

	_, err = s.userService.Login(s.ctx, dto.UserRequest{Email: "nobody@gmail.com", Password: "123456"})
	s.ErrorIs(err, errs.ErrAccountNotFound)
}

func (s *ServiceTestSuite) Test_RoleChangeAppliesAtNextLogin() {
	s.Require().NoError(s.userService.AddUser(s.ctx, dto.UserRequest{Name: "admin", Email: "admin@gmail.com", Password: "123456"}))

	before, err := s.userService.Login(s.ctx, dto.UserRequest{Email: "admin@gmail.com", Password: "123456"})
	s.Require().NoError(err)

	s.Require().NoError(s.userService.GrantAdminByEmail(s.ctx, "ADMIN@gmail.com"))
	s.Equal(utils.RoleUser, s.parseToken(before.Token)["role"])

	after, err := s.userService.Login(s.ctx, dto.UserRequest{Email: "admin@gmail.com", Password: "123456"})
	s.Require().NoError(err)
	s.Equal(utils.RoleAdmin, after.Role)
	s.Equal(utils.RoleAdmin, s.parseToken(after.Token)["role"])

	s.ErrorIs(s.userService.GrantAdminByEmail(s.ctx, "ghost@gmail.com"), errs.ErrAccountNotFound)
}

func (s *ServiceTestSuite) Test_SetUserRole() {
	s.Require().NoError(s.userService.AddUser(s.ctx, dto.UserRequest{Name: "test", Email: "test@gmail.com", Password: "123456"}))
	user, err := s.users.GetUserByEmail(s.ctx, "test@gmail.com")
	s.Require().NoError(err)

	s.ErrorIs(s.userService.SetUserRole(s.ctx, dto.RoleRequest{ExternalID: user.ExternalID, Role: "superuser"}), errs.ErrClient)
	s.ErrorIs(s.userService.SetUserRole(s.ctx, dto.RoleRequest{ExternalID: "01HZZZZZZZZZZZZZZZZZZZZZZZ", Role: utils.RoleAdmin}), errs.ErrNotFound)

	s.Require().NoError(s.userService.SetUserRole(s.ctx, dto.RoleRequest{ExternalID: user.ExternalID, Role: utils.RoleAdmin}))

	resp, err := s.userService.GetUser(s.ctx, user.ExternalID)
	s.Require().NoError(err)
	s.Equal(utils.RoleAdmin, resp.Role)

	_, err = s.userService.GetUser(s.ctx, "missing")
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) Test_GetUsers() {
	for _, email := range []string{"a@gmail.com", "b@gmail.com"} {
		s.Require().NoError(s.userService.AddUser(s.ctx, dto.UserRequest{Name: "test", Email: email, Password: "123456"}))
	}

	resp, err := s.userService.GetUsers(s.ctx, pkgdto.Filter{})
	s.Require().NoError(err)
	s.Equal(uint64(2), resp.Metadata.TotalCount)
	records := resp.Records.([]dto.UserResponse)
	s.Require().Len(records, 2)
	s.Equal("a@gmail.com", records[0].Email)
}
